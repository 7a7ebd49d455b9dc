package middleware

import (
	"context"
	"net/http"
	"strings"

	"formassist/internal/service"
)

type contextKey string

const (
	SessionIDKey contextKey = "sessionId"
	LocaleKey    contextKey = "locale"
)

// SessionMiddleware authenticates requests with a session token
type SessionMiddleware struct {
	authSvc *service.AuthService
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(authSvc *service.AuthService) *SessionMiddleware {
	return &SessionMiddleware{authSvc: authSvc}
}

// RequireSession validates the session JWT from the Authorization header or
// the token query parameter
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			// WebSocket clients cannot set headers
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			writeUnauthorized(w, "missing authorization")
			return
		}

		claims, err := m.authSvc.ValidateSessionToken(token)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, claims.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the session ID from context
func GetSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(SessionIDKey).(string); ok {
		return v
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
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
