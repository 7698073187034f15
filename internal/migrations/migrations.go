package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Create history table",
		Up: `
			CREATE TABLE IF NOT EXISTS history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME NOT NULL,
				app TEXT NOT NULL DEFAULT '',
				method TEXT NOT NULL,
				url TEXT NOT NULL,
				status INTEGER NOT NULL,
				ok INTEGER NOT NULL,
				error TEXT,
				request_id TEXT,
				response_body TEXT NOT NULL,
				duration_ms INTEGER NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
			CREATE INDEX IF NOT EXISTS idx_history_method ON history(method);
			CREATE INDEX IF NOT EXISTS idx_history_url ON history(url);
		`,
	},
	{
		Version: 2,
		Name:    "Add composite index for per-app listing",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_history_app_timestamp ON history(app, timestamp DESC);
		`,
	},
}

// Run executes all pending migrations on the database
func Run(ctx context.Context, db *sql.DB) error {
	return Apply(ctx, db, AllMigrations)
}

// Apply executes the migrations of list newer than the recorded version
func Apply(ctx context.Context, db *sql.DB, list []Migration) error {
	// Create migrations tracking table if it doesn't exist
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for _, migration := range list {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}
		if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}
