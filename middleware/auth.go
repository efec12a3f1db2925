package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

// ContextKey is a custom type to avoid context key collisions.
type ContextKey string

// UserIDKey is the key we'll use to store the user's ID in the request context.
const UserIDKey ContextKey = "userId"

// TokenParser resolves a bearer token to the id of the user it was issued to.
type TokenParser interface {
	Parse(token string) (int, error)
}

// Authenticator checks for a valid JWT in the request header and adds the
// user ID to the request context.
type Authenticator struct {
	tokens TokenParser
	logger *log.Logger
}

// NewAuthenticator returns an Authenticator that verifies tokens with tokens.
func NewAuthenticator(tokens TokenParser, logger *log.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger}
}

// Middleware rejects requests without a valid bearer token with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		// The token is in the format "Bearer <token>".
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			unauthorized(w, "Invalid Authorization header format")
			return
		}

		userID, err := a.tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			a.logger.Debug("token rejected", "path", r.URL.Path, "err", err)
			unauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user's ID stored by Authenticator.
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok && id > 0
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
