package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/spendlog/internal/database"
	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/jackc/pgx/v5"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, description, owner_id, created_at`

func scanCategoryRow(scanner rowScanner) (*models.Category, error) {
	var c models.Category
	if err := scanner.Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategoryRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + ` FROM categories
		WHERE owner_id = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c, err := scanCategoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING ` + categoryColumns

	return scanCategoryRow(r.db.Pool.QueryRow(ctx, query, c.Name, c.Description, c.OwnerID))
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	query := `
		UPDATE categories SET name = $1, description = $2
		WHERE id = $3
		RETURNING ` + categoryColumns

	return scanCategoryRow(r.db.Pool.QueryRow(ctx, query, c.Name, c.Description, c.ID))
}

// Delete removes a category and detaches the expenses filed under it
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE expenses SET category_id = NULL WHERE category_id = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}
