package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"intervue/internal/config"
	"intervue/internal/transport/rest/handler"
	"intervue/internal/transport/rest/middleware"
	"intervue/internal/transport/ws"

	_ "intervue/docs"
)

// Container holds all dependencies for the router
type Container struct {
	Auth     middleware.TokenValidator
	Sessions handler.SessionManager
	Rooms    ws.RoomLifecycle
	Logs     handler.LogAppender
	Reports  handler.ReportOpener
	WSHub    *ws.Hub

	WS                 config.WSConfig
	AgentKey           string
	CORSAllowedOrigins string
	Log                *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	interviewHandler := handler.NewInterviewHandler(c.Sessions, c.Log)
	logHandler := handler.NewLogHandler(c.Logs, c.Log)
	reportHandler := handler.NewReportHandler(c.Reports, c.Log)
	wsHandler := ws.NewHandler(c.WSHub, c.Rooms, c.Auth, c.WS, c.CORSAllowedOrigins, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.Auth, c.AgentKey)

	r.Use(corsMiddleware(c.CORSAllowedOrigins))
	r.Use(middleware.RequestLogger(c.Log))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/rooms/{code}/verify", interviewHandler.Verify).Methods("GET", "OPTIONS")
	v1.HandleFunc("/quiz/score", handler.Score).Methods("POST", "OPTIONS")

	// WebSocket route (token optional, in query param)
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Agent routes
	agentRoutes := v1.NewRoute().Subrouter()
	agentRoutes.Use(authMW.RequireAgentKey)
	agentRoutes.HandleFunc("/logs/process", logHandler.Append).Methods("POST", "OPTIONS")

	// Interviewer routes
	interviewerRoutes := v1.NewRoute().Subrouter()
	interviewerRoutes.Use(authMW.RequireInterviewer)

	interviewerRoutes.HandleFunc("/interviews", interviewHandler.Create).Methods("POST", "OPTIONS")
	interviewerRoutes.HandleFunc("/interviews/history", interviewHandler.History).Methods("GET", "OPTIONS")
	interviewerRoutes.HandleFunc("/interviews/{code}/end", interviewHandler.End).Methods("POST", "OPTIONS")
	interviewerRoutes.HandleFunc("/reports/{ref}", reportHandler.Get).Methods("GET", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, c.WSHub.RoomCount())
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, `{"error":"api docs unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	return r
}

func writeHealth(w http.ResponseWriter, rooms int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","rooms":` + strconv.Itoa(rooms) + `}`))
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	allowedOrigins = strings.TrimSpace(allowedOrigins)
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowOrigin(origins, r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Agent-Key")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allowOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return ""
}
