package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/spendlog/internal/database"
	"github.com/BradenHooton/spendlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// LoginAttemptRepository is the durable attempt log behind the login limiter.
// Inserts are autocommitted on the pool, so a row is visible to the next
// query from any connection.
type LoginAttemptRepository struct {
	db *database.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// RecordAttempt appends one attempt row
func (r *LoginAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (username, ip_address, success, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	success := 0
	if attempt.Success {
		success = 1
	}

	err := r.db.Pool.QueryRow(ctx, query,
		attempt.Username,
		attempt.IPAddress,
		success,
		attempt.Timestamp.UTC(),
	).Scan(&attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", database.MapPostgresError(err))
	}

	return nil
}

// CountFailedSince returns the number of failed attempts for a username at or after since
func (r *LoginAttemptRepository) CountFailedSince(ctx context.Context, username string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE username = $1 AND success = 0 AND timestamp >= $2
	`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, username, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count failed attempts: %w", err)
	}
	return count, nil
}

// EarliestFailedSince returns the timestamp of the oldest failed attempt for a
// username at or after since, or nil when there is none
func (r *LoginAttemptRepository) EarliestFailedSince(ctx context.Context, username string, since time.Time) (*time.Time, error) {
	query := `
		SELECT timestamp FROM login_attempts
		WHERE username = $1 AND success = 0 AND timestamp >= $2
		ORDER BY timestamp ASC
		LIMIT 1
	`

	var ts time.Time
	err := r.db.Pool.QueryRow(ctx, query, username, since.UTC()).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find earliest failed attempt: %w", err)
	}

	ts = ts.UTC()
	return &ts, nil
}

// ListRecent returns a username's latest attempts, newest first
func (r *LoginAttemptRepository) ListRecent(ctx context.Context, username string, limit int) ([]*models.LoginAttempt, error) {
	query := `
		SELECT id, username, ip_address, success, timestamp FROM login_attempts
		WHERE username = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query login attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*models.LoginAttempt, 0)
	for rows.Next() {
		var a models.LoginAttempt
		var success int16
		if err := rows.Scan(&a.ID, &a.Username, &a.IPAddress, &success, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		a.Success = success == 1
		a.Timestamp = a.Timestamp.UTC()
		attempts = append(attempts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}

// DeleteOlderThan removes attempts recorded before cutoff and reports how many went
func (r *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_attempts WHERE timestamp < $1`

	result, err := r.db.Pool.Exec(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
