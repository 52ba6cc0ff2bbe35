// Package adapter provides bounded connection pools for the supported
// database drivers. Every pool implements the same scoped-acquisition
// contract so the probe engine stays driver-agnostic.
package adapter

import (
	"context"
	"errors"
)

// Pool is a bounded set of live connections to one target. A pool is never
// shared across targets.
type Pool interface {
	// Acquire borrows one connection, blocking until one is free or ctx
	// expires. The returned Conn must be released exactly once.
	Acquire(ctx context.Context) (Conn, error)

	// ConnectionCount reports how many connections the pool currently holds.
	ConnectionCount() int

	// Close drains in-flight borrows and closes every member connection
	// before returning.
	Close()
}

// Conn is a scoped handle on one pooled connection.
type Conn interface {
	// Liveness runs a minimal query to confirm the target responds.
	Liveness(ctx context.Context) error

	// ActiveQueries reports the target's currently executing statements,
	// where the driver exposes that. Callers treat a failure here as a
	// metrics gap, not a probe failure.
	ActiveQueries(ctx context.Context) (int, error)

	// Release returns the connection to its pool. Safe on every exit
	// path; must not be called twice.
	Release()
}

var (
	// ErrUnsupportedDriver - target configured with a driver kind no adapter handles
	ErrUnsupportedDriver = errors.New("adapter: unsupported database driver")

	// ErrPoolExhausted - no connection became available within the pool timeout
	ErrPoolExhausted = errors.New("adapter: pool exhausted")
)

// exhausted maps an acquire failure to ErrPoolExhausted when the context
// deadline caused it, leaving other failures untouched.
func exhausted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrPoolExhausted
	}
	return err
}
