// Package store persists probe results to SQLite and serves the history
// queries used by the reporting layer. The table is append-only; one row
// per check.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS health_checks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	target_id TEXT NOT NULL,
	status TEXT NOT NULL,
	response_time REAL NOT NULL,
	connection_count INTEGER NOT NULL,
	active_queries INTEGER NOT NULL,
	cpu_usage REAL NOT NULL,
	memory_usage REAL NOT NULL,
	disk_usage REAL NOT NULL,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_health_checks_target_time
	ON health_checks (target_id, timestamp);
`

// timestampLayout is fixed-width so the TEXT column sorts chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record appends one probe result. Callers treat failures as best-effort.
func (s *Store) Record(ctx context.Context, r models.ProbeResult) error {
	query := `
		INSERT INTO health_checks
		(timestamp, target_id, status, response_time, connection_count, active_queries, cpu_usage, memory_usage, disk_usage, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.Timestamp.UTC().Format(timestampLayout),
		r.TargetID,
		string(r.Status),
		r.ResponseTime,
		r.ConnectionCount,
		r.ActiveQueries,
		r.CPUUsage,
		r.MemoryUsage,
		r.DiskUsage,
		nullable(r.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("failed to record health check: %w", err)
	}
	return nil
}

// History returns checks recorded at or after since, most recent first.
// An empty targetID selects all targets.
func (s *Store) History(ctx context.Context, targetID string, since time.Time) ([]models.ProbeResult, error) {
	query := `
		SELECT timestamp, target_id, status, response_time, connection_count, active_queries, cpu_usage, memory_usage, disk_usage, error_message
		FROM health_checks
		WHERE timestamp >= ?`
	args := []any{since.UTC().Format(timestampLayout)}

	if targetID != "" {
		query += " AND target_id = ?"
		args = append(args, targetID)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var results []models.ProbeResult
	for rows.Next() {
		var r models.ProbeResult
		var ts string
		var errMsg sql.NullString

		if err := rows.Scan(&ts, &r.TargetID, &r.Status, &r.ResponseTime,
			&r.ConnectionCount, &r.ActiveQueries, &r.CPUUsage, &r.MemoryUsage,
			&r.DiskUsage, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if parsed, err := time.Parse(timestampLayout, ts); err == nil {
			r.Timestamp = parsed
		}
		r.ErrorMessage = errMsg.String

		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return results, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
