package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/models"
	pkgauth "github.com/BradenHooton/spendlog/pkg/auth"
	pkglogger "github.com/BradenHooton/spendlog/pkg/logger"
)

const defaultNotifyTimeout = 10 * time.Second

// Credentials is one login or token request
type Credentials struct {
	Username   string
	Password   string
	IPAddress  string
	Entrypoint string
}

// AuthService is the gate in front of credential verification. Both the
// login and token endpoints go through Login so they share one attempt
// history per username.
type AuthService struct {
	users         UserRepository
	limiter       *RateLimitService
	tm            *auth.TokenManager
	notifier      LockoutNotifier
	timing        *auth.TimingDelay
	logger        *slog.Logger
	auditLogger   *pkglogger.AuditLogger
	notifyTimeout time.Duration
	notifyWG      sync.WaitGroup
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserRepository, limiter *RateLimitService, tm *auth.TokenManager, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		users:         users,
		limiter:       limiter,
		tm:            tm,
		logger:        logger,
		auditLogger:   auditLogger,
		notifyTimeout: defaultNotifyTimeout,
	}
}

// WithNotifier enables lockout notifications
func (s *AuthService) WithNotifier(notifier LockoutNotifier) *AuthService {
	s.notifier = notifier
	return s
}

// WithTimingDelay pads failed logins to a minimum duration
func (s *AuthService) WithTimingDelay(timing *auth.TimingDelay) *AuthService {
	s.timing = timing
	return s
}

// Login runs the gate: block check, credential check, attempt record,
// token issue. Errors are *models.RateLimitError when blocked,
// models.ErrUnauthorized for bad credentials and models.ErrInternalServer
// when the attempt log or user store cannot be read.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*models.TokenResponse, error) {
	start := time.Now()

	if err := s.limiter.CheckBlocked(ctx, creds.Username); err != nil {
		var rlErr *models.RateLimitError
		if errors.As(err, &rlErr) {
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:        pkglogger.EventLoginBlocked,
				Username:         creds.Username,
				IPAddress:        creds.IPAddress,
				Entrypoint:       creds.Entrypoint,
				FailureReason:    "rate_limited",
				RemainingSeconds: rlErr.RemainingSeconds,
			})
			return nil, rlErr
		}

		s.logger.Error("attempt log unavailable, refusing login",
			slog.String("entrypoint", creds.Entrypoint),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to get user by username", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		pkgauth.CompareDummy(creds.Password)
		return nil, s.rejectCredentials(ctx, creds, nil, start, "unknown_username")
	}

	if err := pkgauth.ComparePassword(user.HashedPassword, creds.Password); err != nil {
		return nil, s.rejectCredentials(ctx, creds, user, start, "invalid_password")
	}

	if err := s.limiter.RecordLoginAttempt(ctx, creds.Username, creds.IPAddress, true); err != nil {
		s.logger.Error("failed to record successful login attempt",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))
	}

	accessToken, err := s.tm.GenerateAccessToken(user.Username)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID), slog.String("entrypoint", creds.Entrypoint))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType:  pkglogger.EventLoginSuccess,
		Username:   user.Username,
		IPAddress:  creds.IPAddress,
		Entrypoint: creds.Entrypoint,
		Success:    true,
	})

	return &models.TokenResponse{
		AccessToken: accessToken,
		TokenType:   models.TokenTypeBearer,
	}, nil
}

func (s *AuthService) rejectCredentials(ctx context.Context, creds Credentials, user *models.User, start time.Time, reason string) error {
	if err := s.limiter.RecordLoginAttempt(ctx, creds.Username, creds.IPAddress, false); err != nil {
		s.logger.Error("failed to record failed login attempt", slog.Any("error", err))
	} else if user != nil {
		s.notifyIfLockedOut(ctx, user, creds)
	}

	s.logger.Info("login failed: invalid credentials", slog.String("entrypoint", creds.Entrypoint))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType:     pkglogger.EventLoginFailed,
		Username:      creds.Username,
		IPAddress:     creds.IPAddress,
		Entrypoint:    creds.Entrypoint,
		FailureReason: reason,
	})

	s.timing.WaitFrom(ctx, start)
	return models.ErrUnauthorized
}

// notifyIfLockedOut runs after a failure has been recorded. The gate only
// reaches this point when the user was not blocked, so a blocked state now
// means this failure crossed the threshold.
func (s *AuthService) notifyIfLockedOut(ctx context.Context, user *models.User, creds Credentials) {
	blocked, err := s.limiter.IsBlocked(ctx, user.Username)
	if err != nil || !blocked {
		return
	}

	remaining, err := s.limiter.RemainingBlockSeconds(ctx, user.Username)
	if err != nil {
		return
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType:        pkglogger.EventLockout,
		Username:         user.Username,
		IPAddress:        creds.IPAddress,
		Entrypoint:       creds.Entrypoint,
		FailureReason:    "too_many_failures",
		RemainingSeconds: remaining,
	})

	if s.notifier == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		defer cancel()
		if err := s.notifier.NotifyLockout(notifyCtx, user, time.Duration(remaining)*time.Second); err != nil {
			s.logger.Warn("lockout notification failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}()
}

// Wait blocks until in-flight lockout notifications finish
func (s *AuthService) Wait() {
	s.notifyWG.Wait()
}

// BlockedMessage is the caller-facing text for a rate-limited login
func BlockedMessage(remainingSeconds int) string {
	minutes, seconds := splitMinutesSeconds(remainingSeconds)
	return fmt.Sprintf("Account temporarily blocked due to too many failed login attempts. Please try again in %d minutes and %d seconds.", minutes, seconds)
}
