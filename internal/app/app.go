package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"intervue/internal/cache"
	"intervue/internal/config"
	"intervue/internal/repository"
	"intervue/internal/service"
	"intervue/internal/transport/rest"
	"intervue/internal/transport/ws"
)

const pingTimeout = 5 * time.Second

// App wires storage, services and transports together
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Mongo *mongo.Client
	Redis *redis.Client

	SessionRepo    repository.SessionRepo
	ProcessLogRepo repository.ProcessLogRepo
	ReportStore    repository.ReportStore
	RoomCache      cache.RoomCache

	Auth     *service.AuthService
	Sessions *service.SessionService
	Logs     *service.LogService
	Reports  *service.ReportService
	Hub      *ws.Hub
}

// New connects to MongoDB and Redis and builds the service graph
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURI,
	})

	a := &App{
		Config: cfg,
		Log:    log,
		Mongo:  mongoClient,
		Redis:  rdb,
	}
	if err := a.ping(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	log.Info("connected to storage",
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis", cfg.RedisURI))

	db := mongoClient.Database(cfg.MongoDatabase)

	// Initialize repositories
	a.SessionRepo = repository.NewSessionRepo(db)
	a.ProcessLogRepo = repository.NewProcessLogRepo(db)
	a.ReportStore = repository.NewReportStore(db, cfg.ReportBucket)

	// Initialize caches
	a.RoomCache = cache.NewRoomCache(rdb, cfg.RoomMetaTTL)

	// Initialize services
	a.Auth = service.NewAuthService(cfg.JWTSecret)
	a.Reports = service.NewReportService(a.ProcessLogRepo, a.ReportStore, log.Named("report"))
	a.Sessions = service.NewSessionService(a.SessionRepo, a.RoomCache, a.Reports, log.Named("session"))
	a.Logs = service.NewLogService(a.SessionRepo, a.ProcessLogRepo, log.Named("processlog"))

	// Inject broadcaster (Hub implements service.Broadcaster)
	a.Hub = ws.NewHub(log.Named("hub"))
	a.Sessions.SetBroadcaster(a.Hub)

	return a, nil
}

// ping checks both stores concurrently
func (a *App) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Mongo.Ping(ctx, nil); err != nil {
			return fmt.Errorf("ping mongodb: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// EnsureIndexes creates the MongoDB indexes the repositories rely on
func (a *App) EnsureIndexes(ctx context.Context) error {
	if err := a.SessionRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}
	if err := a.ProcessLogRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("process log indexes: %w", err)
	}
	return nil
}

// Router builds the HTTP handler for the API and WebSocket endpoints
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		Auth:               a.Auth,
		Sessions:           a.Sessions,
		Rooms:              a.Sessions,
		Logs:               a.Logs,
		Reports:            a.Reports,
		WSHub:              a.Hub,
		WS:                 a.Config.WS,
		AgentKey:           a.Config.AgentKey,
		CORSAllowedOrigins: a.Config.CORSAllowedOrigins,
		Log:                a.Log.Named("http"),
	})
}

// Close releases the storage clients
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("close redis", zap.Error(err))
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Log.Warn("disconnect mongodb", zap.Error(err))
		}
	}
}
