package data

import (
	"context"
	"database/sql"

	"github.com/crimetracker/crimetracker-api/internal/migrate"
)

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
