package adapter

import (
	"context"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

// NewPool establishes a connection pool for the target's driver kind.
// The pool is verified reachable before it is returned; on failure no
// resources are left behind.
func NewPool(ctx context.Context, target registry.Target) (Pool, error) {
	switch target.Driver {
	case "postgres", "postgresql":
		return NewPostgresPool(ctx, target)
	case "mysql":
		return NewMySQLPool(ctx, target)
	case "sqlite", "sqlite3":
		return NewSQLitePool(ctx, target)
	case "mongodb", "mongo":
		return NewMongoPool(ctx, target)
	default:
		return nil, ErrUnsupportedDriver
	}
}
