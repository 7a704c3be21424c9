package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BradenHooton/spendlog/internal/config"
	"github.com/BradenHooton/spendlog/migrations"
	_ "github.com/lib/pq"
)

const usage = "usage: migrate up|down|status|version"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, db, os.Args[1], logger); err != nil {
		logger.Error("migrate failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	switch command {
	case "up":
		return migrations.Up(ctx, db)
	case "down":
		return migrations.Down(ctx, db)
	case "status":
		return migrations.Status(ctx, db)
	case "version":
		version, err := migrations.Version(ctx, db)
		if err != nil {
			return err
		}
		logger.Info("current schema version", slog.Int64("version", version))
		return nil
	default:
		return fmt.Errorf("unknown command %q (%s)", command, usage)
	}
}
