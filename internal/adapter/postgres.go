package adapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

type PostgresPool struct {
	pool *pgxpool.Pool
}

// NewPostgresPool creates and verifies a pgx pool bounded to the target's
// configured max size.
func NewPostgresPool(ctx context.Context, target registry.Target) (*PostgresPool, error) {
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		target.Username, target.Password, target.Host, target.Port, target.Database)

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	cfg.MaxConns = int32(target.MaxPoolSize)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresPool{pool: pool}, nil
}

func (p *PostgresPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, exhausted(err)
	}
	return &postgresConn{conn: conn}, nil
}

func (p *PostgresPool) ConnectionCount() int {
	return int(p.pool.Stat().TotalConns())
}

// Close blocks until all borrowed connections are released, then closes
// every member connection.
func (p *PostgresPool) Close() {
	p.pool.Close()
}

type postgresConn struct {
	conn *pgxpool.Conn
}

func (c *postgresConn) Liveness(ctx context.Context) error {
	var one int
	if err := c.conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("liveness query failed: %w", err)
	}
	return nil
}

func (c *postgresConn) ActiveQueries(ctx context.Context) (int, error) {
	var count int
	query := "SELECT count(*) FROM pg_stat_activity WHERE state = 'active'"

	if err := c.conn.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get active queries: %w", err)
	}
	return count, nil
}

func (c *postgresConn) Release() {
	c.conn.Release()
}
