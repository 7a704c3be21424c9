package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/BradenHooton/spendlog/pkg/auth"
	pkglogger "github.com/BradenHooton/spendlog/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// AttemptHistory lists a user's own login attempts
type AttemptHistory interface {
	ListRecent(ctx context.Context, username string, limit int) ([]*models.LoginAttempt, error)
}

// SignupInput carries an already-validated registration request
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	IPAddress string
}

// UserService handles user business logic
type UserService struct {
	repo        UserRepository
	attempts    AttemptHistory
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, attempts AttemptHistory, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		attempts:    attempts,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Register creates an account. Email is checked before username.
func (s *UserService) Register(ctx context.Context, input SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return nil, models.ErrUsernameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.repo.Create(ctx, &models.User{
		Username:       input.Username,
		Email:          email,
		HashedPassword: hash,
	})
	if err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, models.ErrEmailTaken) || errors.Is(err, models.ErrUsernameTaken) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.Int64("user_id", created.ID))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUserRegistered, created.Username, input.IPAddress)

	return created, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.Int64("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// LoginHistory returns the user's most recent login attempts, newest first
func (s *UserService) LoginHistory(ctx context.Context, user *models.User, limit int) ([]*models.LoginAttempt, error) {
	attempts, err := s.attempts.ListRecent(ctx, user.Username, limit)
	if err != nil {
		s.logger.Error("failed to list login attempts", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return attempts, nil
}
