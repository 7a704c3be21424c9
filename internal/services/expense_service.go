package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/spendlog/internal/models"
)

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Expense, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	Delete(ctx context.Context, id int64) error
}

// ExpenseInput is the writable part of an expense. PUT replaces all of it.
type ExpenseInput struct {
	Amount      float64
	Description *string
	Date        time.Time
	CategoryID  *int64
}

type ExpenseService struct {
	repo       ExpenseRepository
	categories CategoryRepository
	logger     *slog.Logger
}

func NewExpenseService(repo ExpenseRepository, categories CategoryRepository, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// checkCategory rejects category ids the owner cannot file expenses under
func (s *ExpenseService) checkCategory(ctx context.Context, ownerID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}

	category, err := s.categories.GetByID(ctx, *categoryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrCategoryNotOwned
		}
		s.logger.Error("failed to get category", slog.Int64("category_id", *categoryID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if category.OwnerID != ownerID {
		return models.ErrCategoryNotOwned
	}
	return nil
}

func (s *ExpenseService) Create(ctx context.Context, ownerID int64, input ExpenseInput) (*models.Expense, error) {
	if err := s.checkCategory(ctx, ownerID, input.CategoryID); err != nil {
		return nil, err
	}

	expense, err := s.repo.Create(ctx, &models.Expense{
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
		CategoryID:  input.CategoryID,
		OwnerID:     ownerID,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			return nil, models.ErrCategoryNotOwned
		}
		s.logger.Error("failed to create expense", slog.Int64("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return expense, nil
}

func (s *ExpenseService) List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Expense, error) {
	expenses, err := s.repo.ListByOwner(ctx, ownerID, limit, skip)
	if err != nil {
		s.logger.Error("failed to list expenses", slog.Int64("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return expenses, nil
}

// Get returns ErrNotFound for a missing expense and ErrForbidden for
// another user's
func (s *ExpenseService) Get(ctx context.Context, ownerID, id int64) (*models.Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get expense", slog.Int64("expense_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if expense.OwnerID != ownerID {
		s.logger.Warn("expense access denied",
			slog.Int64("expense_id", id),
			slog.Int64("user_id", ownerID))
		return nil, models.ErrForbidden
	}

	return expense, nil
}

func (s *ExpenseService) Update(ctx context.Context, ownerID, id int64, input ExpenseInput) (*models.Expense, error) {
	expense, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, ownerID, input.CategoryID); err != nil {
		return nil, err
	}

	expense.Amount = input.Amount
	expense.Description = input.Description
	expense.Date = input.Date
	expense.CategoryID = input.CategoryID

	updated, err := s.repo.Update(ctx, expense)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return nil, models.ErrNotFound
		case errors.Is(err, models.ErrBadRequest):
			return nil, models.ErrCategoryNotOwned
		}
		s.logger.Error("failed to update expense", slog.Int64("expense_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("expense updated", slog.Int64("expense_id", id))
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete expense", slog.Int64("expense_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("expense deleted", slog.Int64("expense_id", id))
	return nil
}
