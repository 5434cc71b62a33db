package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"intervue/internal/model"
)

type contextKey string

const UserIDKey contextKey = "userId"

// TokenValidator resolves a bearer token to its claims
type TokenValidator interface {
	ValidateToken(token string) (*model.UserClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	auth     TokenValidator
	agentKey string
}

// NewAuthMiddleware creates a new auth middleware. An empty agentKey disables
// the process-log agent check.
func NewAuthMiddleware(auth TokenValidator, agentKey string) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, agentKey: agentKey}
}

// RequireInterviewer validates the JWT from the Authorization header
func (m *AuthMiddleware) RequireInterviewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAgentKey checks the X-Agent-Key header sent by process log agents
func (m *AuthMiddleware) RequireAgentKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.agentKey != "" {
			got := r.Header.Get("X-Agent-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(m.agentKey)) != 1 {
				http.Error(w, `{"error":"invalid agent key"}`, http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID returns a context carrying an authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
