// Package migration applies the embedded schema migrations with goose.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrations returns the migration files, rooted at their directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewProvider returns a goose provider over the embedded migrations.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, Migrations())
}

// EnsureMigrated applies every pending migration and logs each applied step.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(slog.String("component", "database"), slog.String("db_host", dbHost))

	log.InfoContext(ctx, "db_migration_start", slog.String("status", "in_progress"))

	provider, err := NewProvider(db)
	if err != nil {
		log.ErrorContext(ctx, "db_migration_failed",
			slog.String("status", "error"),
			slog.String("error_message", err.Error()),
		)
		return fmt.Errorf("init migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		log.InfoContext(ctx, "db_migration_step",
			slog.String("status", "success"),
			slog.Int64("migration_version", r.Source.Version),
			slog.String("migration_step", r.Source.Path),
			slog.Int64("step_duration_ms", r.Duration.Milliseconds()),
		)
	}
	if err != nil {
		log.ErrorContext(ctx, "db_migration_failed",
			slog.String("status", "error"),
			slog.String("error_message", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.InfoContext(ctx, "db_migration_success",
		slog.String("status", "success"),
		slog.Int("applied", len(results)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
