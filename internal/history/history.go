// Package history records every request envelope in a SQLite database so
// past calls can be listed from the command line.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/restui/internal/migrations"
	"github.com/studiowebux/restui/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// Entry is one recorded request
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	App       string    `json:"app"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Status    int       `json:"status"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Body      string    `json:"body"`
	Duration  int64     `json:"durationMs"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	App   string
	Limit int
}

// Manager stores history entries
type Manager struct {
	db  *sql.DB
	app string
	now func() time.Time
}

// NewManager opens (or creates) the history database at dbPath. Entries
// recorded through the manager are tagged with app.
func NewManager(dbPath, app string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One writer avoids "database is locked" between section refreshes
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, app: app, now: time.Now}, nil
}

// Record saves one envelope. It satisfies the pipeline recorder.
func (m *Manager) Record(ctx context.Context, method, url string, env *types.Envelope) error {
	if env == nil {
		return nil
	}
	query := `
		INSERT INTO history (
			timestamp, app, method, url, status, ok, error, request_id,
			response_body, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Timestamps are stored in UTC, the driver reads DATETIME columns as UTC
	timestampStr := m.now().UTC().Format(timestampLayout)

	_, err := m.db.ExecContext(ctx, query,
		timestampStr,
		m.app,
		method,
		url,
		env.Status,
		env.OK,
		env.ErrorMessage(),
		env.Header("X-Request-Id"),
		env.Raw,
		env.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// List returns entries newest first
func (m *Manager) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `
		SELECT id, timestamp, app, method, url, status, ok, error, request_id,
		       response_body, duration_ms
		FROM history
		WHERE ? = '' OR app = ?
		ORDER BY timestamp DESC, id DESC
	`
	args := []any{f.App, f.App}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var entry Entry
		var timestamp string
		var errorMsg sql.NullString
		var requestID sql.NullString

		err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.App,
			&entry.Method,
			&entry.URL,
			&entry.Status,
			&entry.OK,
			&errorMsg,
			&requestID,
			&entry.Body,
			&entry.Duration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		// The driver hands DATETIME columns back as RFC3339
		parsed, err := time.Parse(time.RFC3339, timestamp)
		if err != nil {
			parsed, err = time.ParseInLocation(timestampLayout, timestamp, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("bad history timestamp %q: %w", timestamp, err)
			}
		}
		entry.Timestamp = parsed.Local()
		entry.Error = errorMsg.String
		entry.RequestID = requestID.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear deletes every entry
func (m *Manager) Clear(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Delete removes one entry
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if _, err := m.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

// Count returns the total number of entries
func (m *Manager) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

// Close closes the database
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
