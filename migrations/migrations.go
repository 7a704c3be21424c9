// Package migrations embeds the goose SQL migrations so the api binary and
// the migrate command apply the same schema.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

func init() {
	goose.SetBaseFS(FS)
}

func setDialect() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration
func Up(ctx context.Context, db *sql.DB) error {
	if err := setDialect(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration
func Down(ctx context.Context, db *sql.DB) error {
	if err := setDialect(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// Status prints the applied/pending state of each migration through goose's logger
func Status(ctx context.Context, db *sql.DB) error {
	if err := setDialect(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, ".")
}

// Version returns the current schema version
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setDialect(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
