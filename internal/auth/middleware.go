package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/spendlog/internal/models"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
)

type contextKey string

const (
	// UserContextKey holds the authenticated *models.User
	UserContextKey contextKey = "user"
)

const invalidCredentialsMessage = "Could not validate credentials"

// UserLookup resolves the token subject to a stored user
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthMiddleware requires a valid bearer token whose subject still exists
// and stores that user in the request context
func AuthMiddleware(tm *TokenManager, users UserLookup, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				pkghttp.WriteBearerUnauthorized(w, "Not authenticated")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				logger.Debug("token validation failed", slog.Any("error", err))
				pkghttp.WriteBearerUnauthorized(w, invalidCredentialsMessage)
				return
			}

			user, err := users.GetByUsername(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteBearerUnauthorized(w, invalidCredentialsMessage)
					return
				}
				logger.Error("failed to load token subject", slog.Any("error", err))
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserFromContext returns the authenticated user or nil
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
