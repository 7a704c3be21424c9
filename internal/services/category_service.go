package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/spendlog/internal/models"
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryInput is the writable part of a category
type CategoryInput struct {
	Name        string
	Description *string
}

type CategoryService struct {
	repo   CategoryRepository
	logger *slog.Logger
}

func NewCategoryService(repo CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		logger: logger,
	}
}

func (s *CategoryService) Create(ctx context.Context, ownerID int64, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.Create(ctx, &models.Category{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     ownerID,
	})
	if err != nil {
		s.logger.Error("failed to create category", slog.Int64("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, ownerID int64, skip, limit int) ([]*models.Category, error) {
	categories, err := s.repo.ListByOwner(ctx, ownerID, limit, skip)
	if err != nil {
		s.logger.Error("failed to list categories", slog.Int64("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return categories, nil
}

// Get returns ErrNotFound for a missing category and ErrForbidden for
// another user's
func (s *CategoryService) Get(ctx context.Context, ownerID, id int64) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get category", slog.Int64("category_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if category.OwnerID != ownerID {
		s.logger.Warn("category access denied",
			slog.Int64("category_id", id),
			slog.Int64("user_id", ownerID))
		return nil, models.ErrForbidden
	}

	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, ownerID, id int64, input CategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Description = input.Description

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update category", slog.Int64("category_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("category updated", slog.Int64("category_id", id))
	return updated, nil
}

// Delete removes the category; its expenses are kept uncategorised
func (s *CategoryService) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete category", slog.Int64("category_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("category deleted", slog.Int64("category_id", id))
	return nil
}
