package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phrazzld/grams-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// migrationCommands are the goose commands accepted by -migrate.
var migrationCommands = []string{"up", "down", "redo", "reset", "status", "version"}

// runMigrations executes a goose command against the embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !slices.Contains(migrationCommands, command) {
		return fmt.Errorf("unsupported migration command %q (expected one of %v)", command, migrationCommands)
	}

	log := logger.With(slog.String("component", "migrations"), slog.String("command", command))
	if err := configureGoose(log); err != nil {
		return err
	}

	start := time.Now()
	log.Info("starting migration operation")
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		log.Error("migration operation failed", slog.String("error", err.Error()))
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	log.Info("migration operation completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

func configureGoose(log *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&slogGooseLogger{logger: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level without exiting; the caller returns the error.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
