package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/background"
	"github.com/BradenHooton/spendlog/internal/config"
	"github.com/BradenHooton/spendlog/internal/database"
	"github.com/BradenHooton/spendlog/internal/handlers"
	middlewareCustom "github.com/BradenHooton/spendlog/internal/middleware"
	"github.com/BradenHooton/spendlog/internal/repositories"
	"github.com/BradenHooton/spendlog/internal/routes"
	"github.com/BradenHooton/spendlog/internal/services"
	"github.com/BradenHooton/spendlog/migrations"
	pkghttp "github.com/BradenHooton/spendlog/pkg/http"
	pkglogger "github.com/BradenHooton/spendlog/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := migrations.Up(migrateCtx, db.SQLDB())
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)

	cleanupManager := background.NewCleanupManager(loginAttemptRepo, logger, cfg.Auth.CleanupInterval, cfg.Auth.AttemptRetention)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	auditLogger := pkglogger.NewAuditLogger(logger, cfg.Server.Env)

	rateLimitService := services.NewRateLimitService(loginAttemptRepo, services.RateLimitConfig{
		MaxFailedAttempts: cfg.Limiter.MaxFailedAttempts,
		RecentWindow:      cfg.Limiter.RecentWindow,
		BlockWindow:       cfg.Limiter.BlockWindow,
	}, logger)

	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:   time.Duration(cfg.Auth.TimingDelayBaseMs) * time.Millisecond,
		RandomDelay: time.Duration(cfg.Auth.TimingDelayRandomMs) * time.Millisecond,
	})

	notifier := newLockoutNotifier(cfg, logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, rateLimitService, tokenManager, logger, auditLogger).
		WithNotifier(notifier).
		WithTimingDelay(timingDelay)
	userService := services.NewUserService(userRepo, loginAttemptRepo, logger, auditLogger)
	categoryService := services.NewCategoryService(categoryRepo, logger)
	expenseService := services.NewExpenseService(expenseRepo, categoryRepo, logger)

	ipResolver := pkghttp.NewClientIPResolver(cfg.Server.TrustedProxies)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipResolver))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Dependencies{
		Health:             handlers.NewHealthHandler(db, logger),
		Auth:               handlers.NewAuthHandler(authService, userService, ipResolver, logger),
		Users:              handlers.NewUserHandler(userService),
		Categories:         handlers.NewCategoryHandler(categoryService),
		Expenses:           handlers.NewExpenseHandler(expenseService),
		TokenManager:       tokenManager,
		UserLookup:         userRepo,
		IPResolver:         ipResolver,
		Logger:             logger,
		AuthRequestsPerMin: cfg.Auth.AuthRequestsPerMin,
		UserRequestsPerMin: cfg.Auth.UserRequestsPerMin,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	// let in-flight lockout emails finish before the pool closes
	authService.Wait()

	logger.Info("server stopped gracefully")
}

// newLockoutNotifier uses SES when a sender address is configured
func newLockoutNotifier(cfg *config.Config, logger *slog.Logger) services.LockoutNotifier {
	if cfg.Email.FromAddress == "" {
		logger.Info("EMAIL_FROM_ADDRESS not set, lockout notifications go to the log")
		return services.NewLogLockoutNotifier(logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifier, err := services.NewSESLockoutNotifier(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Warn("failed to initialize SES, lockout notifications go to the log", slog.Any("error", err))
		return services.NewLogLockoutNotifier(logger)
	}
	return notifier
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
