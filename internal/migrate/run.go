// Package migrate applies the embedded SQL schema migrations in lexical order,
// recording each applied version in schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Run applies all embedded migrations. It is safe to call multiple times.
func Run(ctx context.Context, db *sql.DB) error {
	return RunFS(ctx, db, migrationsFS, slog.Default())
}

// RunFS applies the *.sql files under migrations/ in fsys.
func RunFS(ctx context.Context, db *sql.DB, fsys fs.FS, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrations")

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := listMigrations(fsys)
	if err != nil {
		return err
	}

	applied := 0
	for _, f := range files {
		ok, applyErr := applyMigration(ctx, db, fsys, f, logger)
		if applyErr != nil {
			return applyErr
		}
		if ok {
			applied++
		}
	}
	logger.InfoContext(ctx, "migrations complete", "applied", applied, "total", len(files))
	return nil
}

func listMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyMigration runs one file in its own transaction; it reports false when
// the version was already recorded.
func applyMigration(ctx context.Context, db *sql.DB, fsys fs.FS, file string, logger *slog.Logger) (bool, error) {
	version := strings.TrimSuffix(file, ".sql")

	var exists bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", file, err)
	}
	if exists {
		return false, nil
	}

	body, err := fs.ReadFile(fsys, path.Join(migrationsDir, file))
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", file, err)
	}

	logger.InfoContext(ctx, "applying migration", "version", version)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "failed to rollback transaction", "err", rbErr, "migration_file", file)
		}
	}()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return false, fmt.Errorf("exec migration %s: %w", file, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return false, fmt.Errorf("record migration %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit migration %s: %w", file, err)
	}
	return true, nil
}
