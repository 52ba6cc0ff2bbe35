package adapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

type SQLitePool struct {
	db *sql.DB
}

// NewSQLitePool opens the database file named by the target's Database
// field. SQLite has no server to reach, but the ping still verifies the
// file is openable and not corrupt.
func NewSQLitePool(ctx context.Context, target registry.Target) (*SQLitePool, error) {
	db, err := sql.Open("sqlite3", target.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(target.MaxPoolSize)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return &SQLitePool{db: db}, nil
}

func (p *SQLitePool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, exhausted(err)
	}
	return &sqliteConn{conn: conn}, nil
}

func (p *SQLitePool) ConnectionCount() int {
	return p.db.Stats().OpenConnections
}

func (p *SQLitePool) Close() {
	p.db.Close()
}

type sqliteConn struct {
	conn *sql.Conn
}

func (c *sqliteConn) Liveness(ctx context.Context) error {
	var one int
	if err := c.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("liveness query failed: %w", err)
	}
	return nil
}

// ActiveQueries always reports zero; sqlite exposes no statement-level
// activity view.
func (c *sqliteConn) ActiveQueries(ctx context.Context) (int, error) {
	return 0, nil
}

func (c *sqliteConn) Release() {
	c.conn.Close()
}
