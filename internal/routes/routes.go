package routes

import (
	"log/slog"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/handlers"
	"github.com/BradenHooton/spendlog/internal/middleware"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
	"github.com/go-chi/chi/v5"
)

// Dependencies bundles what the route table needs
type Dependencies struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Categories *handlers.CategoryHandler
	Expenses   *handlers.ExpenseHandler

	TokenManager *auth.TokenManager
	UserLookup   auth.UserLookup
	IPResolver   *pkghttp.ClientIPResolver
	Logger       *slog.Logger

	AuthRequestsPerMin int
	UserRequestsPerMin int
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, deps Dependencies) {
	authLimit := middleware.DefaultAuthRateLimit()
	if deps.AuthRequestsPerMin > 0 {
		authLimit.RequestsPerMinute = deps.AuthRequestsPerMin
	}
	authLimit.IPResolver = deps.IPResolver

	userLimit := middleware.RateLimitConfig{
		RequestsPerMinute: deps.UserRequestsPerMin,
		IPResolver:        deps.IPResolver,
	}

	// Public routes - no authentication required
	router.Get("/", deps.Health.Root)
	router.Get("/health", deps.Health.Health)

	// One throttle instance shared by the credential endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(authLimit))
		r.Post("/signup", deps.Auth.Signup)
		r.Post("/login", deps.Auth.Login)
		r.Post("/token", deps.Auth.Token)
	})

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(deps.TokenManager, deps.UserLookup, deps.Logger))
		if userLimit.RequestsPerMinute > 0 {
			r.Use(middleware.RateLimitByUser(userLimit))
		}

		r.Get("/users/me", deps.Users.Me)
		r.Get("/users/me/", deps.Users.Me)
		r.Get("/users/me/login-attempts", deps.Users.LoginAttempts)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", deps.Categories.Create)
			r.Get("/", deps.Categories.List)
			r.Get("/{id}", deps.Categories.Get)
			r.Put("/{id}", deps.Categories.Update)
			r.Delete("/{id}", deps.Categories.Delete)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", deps.Expenses.Create)
			r.Get("/", deps.Expenses.List)
			r.Get("/{id}", deps.Expenses.Get)
			r.Put("/{id}", deps.Expenses.Update)
			r.Delete("/{id}", deps.Expenses.Delete)
		})
	})
}
