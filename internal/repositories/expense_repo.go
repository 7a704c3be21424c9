package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/spendlog/internal/database"
	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(db *database.DB) *ExpenseRepository {
	return &ExpenseRepository{pool: db.Pool}
}

const expenseColumns = `id, amount, description, date, category_id, owner_id, created_at`

func scanExpenseRow(scanner rowScanner) (*models.Expense, error) {
	var e models.Expense
	err := scanner.Scan(&e.ID, &e.Amount, &e.Description, &e.Date, &e.CategoryID, &e.OwnerID, &e.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &e, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	return scanExpenseRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ExpenseRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Expense, error) {
	query := `
		SELECT ` + expenseColumns + ` FROM expenses
		WHERE owner_id = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	for rows.Next() {
		e, err := scanExpenseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return expenses, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (amount, description, date, category_id, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + expenseColumns

	return scanExpenseRow(r.pool.QueryRow(ctx, query, e.Amount, e.Description, e.Date, e.CategoryID, e.OwnerID))
}

func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		UPDATE expenses SET amount = $1, description = $2, date = $3, category_id = $4
		WHERE id = $5
		RETURNING ` + expenseColumns

	return scanExpenseRow(r.pool.QueryRow(ctx, query, e.Amount, e.Description, e.Date, e.CategoryID, e.ID))
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
