package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/BradenHooton/spendlog/internal/auth"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	// IPResolver decides which address a request is counted against.
	// Nil falls back to the peer address.
	IPResolver *pkghttp.ClientIPResolver
}

// DefaultAuthRateLimit returns the per-IP throttle for /login, /token and /signup.
// It sits in front of the per-username lockout and never replaces it.
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return config.IPResolver.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// RateLimitByUser throttles authenticated routes per user, falling back to
// the client IP when no user is on the context.
func RateLimitByUser(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if user := auth.GetUserFromContext(r); user != nil {
				return "user:" + strconv.FormatInt(user.ID, 10), nil
			}
			return "ip:" + config.IPResolver.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
}
