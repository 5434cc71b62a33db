package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "super-secret-key-change-in-production"

// Config holds all service configuration, read from the environment.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"intervue"`
	RedisURI      string `env:"REDIS_URI" envDefault:"localhost:6379"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"super-secret-key-change-in-production"`

	// AgentKey authenticates out-of-band process log sources; empty disables the check.
	AgentKey string `env:"AGENT_KEY"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	WS WSConfig `envPrefix:"WS_"`

	// ReportBucket is the GridFS bucket holding compiled reports.
	ReportBucket string        `env:"REPORT_BUCKET" envDefault:"reports"`
	RoomMetaTTL  time.Duration `env:"ROOM_META_TTL" envDefault:"24h"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// WSConfig tunes the participant WebSocket connections.
type WSConfig struct {
	MaxMessageSize     int64         `env:"MAX_MESSAGE_SIZE" envDefault:"65536"`
	SendBuffer         int           `env:"SEND_BUFFER" envDefault:"256"`
	PongWait           time.Duration `env:"PONG_WAIT" envDefault:"60s"`
	WriteWait          time.Duration `env:"WRITE_WAIT" envDefault:"10s"`
	MaxFramesPerSecond int           `env:"MAX_FRAMES_PER_SECOND" envDefault:"50"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.RedisURI = strings.TrimPrefix(cfg.RedisURI, "redis://")
	return cfg, nil
}

// Validate checks required fields and production safety.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("config: MONGO_URI is required")
	}
	if c.MongoDatabase == "" {
		return errors.New("config: MONGO_DATABASE is required")
	}
	if c.RedisURI == "" {
		return errors.New("config: REDIS_URI is required")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("config: in production JWT_SECRET must be changed")
	}
	if c.WS.SendBuffer <= 0 {
		return errors.New("config: WS_SEND_BUFFER must be positive")
	}
	if c.WS.PongWait <= 0 || c.WS.WriteWait <= 0 {
		return errors.New("config: WS_PONG_WAIT and WS_WRITE_WAIT must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
