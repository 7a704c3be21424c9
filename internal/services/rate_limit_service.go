package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/spendlog/internal/models"
)

// AttemptLog is the durable store the limiter reads its state from.
// Writes must be visible to the very next read.
type AttemptLog interface {
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error
	CountFailedSince(ctx context.Context, username string, since time.Time) (int, error)
	EarliestFailedSince(ctx context.Context, username string, since time.Time) (*time.Time, error)
}

// RateLimitConfig holds the windowing rules for username lockout
type RateLimitConfig struct {
	MaxFailedAttempts int           // failures inside RecentWindow that trigger a block
	RecentWindow      time.Duration // trailing window the failures are counted in
	BlockWindow       time.Duration // how long a block lasts from the triggering failure
}

// DefaultRateLimitConfig returns 5 failures per minute, blocked for 30 minutes
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxFailedAttempts: 5,
		RecentWindow:      1 * time.Minute,
		BlockWindow:       30 * time.Minute,
	}
}

// RateLimitService derives a username's block state from the attempt log.
// Nothing is cached: every call recomputes from the stored attempts.
type RateLimitService struct {
	repo   AttemptLog
	config RateLimitConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(repo AttemptLog, config RateLimitConfig, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{
		repo:   repo,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *RateLimitService) WithClock(now func() time.Time) *RateLimitService {
	s.now = now
	return s
}

// IsBlocked reports whether username is currently locked out.
//
// The failures in the trailing RecentWindow are counted; below the threshold
// the user is not blocked. Otherwise the earliest of those failures is the
// trigger, and the user is blocked while the trigger lies inside the
// trailing BlockWindow. Because the recent window is re-evaluated on every
// call, a user whose failures age out of it is unblocked even if the block
// window has not elapsed.
func (s *RateLimitService) IsBlocked(ctx context.Context, username string) (bool, error) {
	now := s.now()
	recentWindowStart := now.Add(-s.config.RecentWindow)

	failedCount, err := s.repo.CountFailedSince(ctx, username, recentWindowStart)
	if err != nil {
		return false, fmt.Errorf("count failed attempts: %w", err)
	}

	if failedCount < s.config.MaxFailedAttempts {
		return false, nil
	}

	trigger, err := s.repo.EarliestFailedSince(ctx, username, recentWindowStart)
	if err != nil {
		return false, fmt.Errorf("find triggering attempt: %w", err)
	}
	if trigger == nil {
		return false, nil
	}

	blockWindowStart := now.Add(-s.config.BlockWindow)
	return !trigger.Before(blockWindowStart), nil
}

// RemainingBlockSeconds returns how long until the block placed by the
// earliest recent failure expires, clamped at zero. It does not apply the
// failure threshold, so callers should check IsBlocked first.
func (s *RateLimitService) RemainingBlockSeconds(ctx context.Context, username string) (int, error) {
	now := s.now()

	trigger, err := s.repo.EarliestFailedSince(ctx, username, now.Add(-s.config.RecentWindow))
	if err != nil {
		return 0, fmt.Errorf("find triggering attempt: %w", err)
	}
	if trigger == nil {
		return 0, nil
	}

	remaining := trigger.Add(s.config.BlockWindow).Sub(now)
	if remaining <= 0 {
		return 0, nil
	}

	return int(remaining / time.Second), nil
}

// CheckBlocked returns a *models.RateLimitError when username is blocked
// and nil when the attempt may proceed. Store failures are returned as-is
// and must be treated as a refusal by the caller.
func (s *RateLimitService) CheckBlocked(ctx context.Context, username string) error {
	blocked, err := s.IsBlocked(ctx, username)
	if err != nil {
		return err
	}
	if !blocked {
		return nil
	}

	remaining, err := s.RemainingBlockSeconds(ctx, username)
	if err != nil {
		return err
	}

	s.logger.Warn("login attempt rejected: username blocked",
		slog.Int("remaining_seconds", remaining))

	return &models.RateLimitError{RemainingSeconds: remaining}
}

// RecordLoginAttempt appends one attempt stamped with the current UTC time
func (s *RateLimitService) RecordLoginAttempt(ctx context.Context, username, ipAddress string, success bool) error {
	attempt := &models.LoginAttempt{
		Username:  username,
		Success:   success,
		Timestamp: s.now().UTC(),
	}
	if ipAddress != "" {
		attempt.IPAddress = &ipAddress
	}

	if err := s.repo.RecordAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}

	return nil
}
