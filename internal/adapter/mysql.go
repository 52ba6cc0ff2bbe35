package adapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

type MySQLPool struct {
	db *sql.DB
}

// NewMySQLPool creates and verifies a database/sql pool bounded to the
// target's configured max size.
func NewMySQLPool(ctx context.Context, target registry.Target) (*MySQLPool, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		target.Username, target.Password, target.Host, target.Port, target.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql pool: %w", err)
	}
	db.SetMaxOpenConns(target.MaxPoolSize)
	db.SetMaxIdleConns(target.MaxPoolSize)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	return &MySQLPool{db: db}, nil
}

func (p *MySQLPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, exhausted(err)
	}
	return &mysqlConn{conn: conn}, nil
}

func (p *MySQLPool) ConnectionCount() int {
	return p.db.Stats().OpenConnections
}

func (p *MySQLPool) Close() {
	p.db.Close()
}

type mysqlConn struct {
	conn *sql.Conn
}

func (c *mysqlConn) Liveness(ctx context.Context) error {
	var one int
	if err := c.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("liveness query failed: %w", err)
	}
	return nil
}

func (c *mysqlConn) ActiveQueries(ctx context.Context) (int, error) {
	var name string
	var count int
	query := "SHOW GLOBAL STATUS LIKE 'Threads_running'"

	if err := c.conn.QueryRowContext(ctx, query).Scan(&name, &count); err != nil {
		return 0, fmt.Errorf("failed to get active queries: %w", err)
	}
	return count, nil
}

func (c *mysqlConn) Release() {
	c.conn.Close()
}
