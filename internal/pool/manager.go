// Package pool owns the live connection pools, one per registered target.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/adapter"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

var (
	// ErrInvalidConfig - target configuration rejected at registration
	ErrInvalidConfig = errors.New("pool: invalid target configuration")

	// ErrTargetNotFound - operation on an unregistered target id
	ErrTargetNotFound = errors.New("pool: target not registered")
)

const defaultTimeout = 30 * time.Second

// Manager creates, serves and destroys connection pools. Map mutation
// (add/remove/shutdown) is serialized; acquires proceed concurrently and
// never observe a pool mid-teardown.
type Manager struct {
	registry *registry.Registry

	mu       sync.RWMutex
	pools    map[string]adapter.Pool
	shutdown bool

	acquires atomic.Int64

	// newPool is swappable in tests; defaults to the driver factory.
	newPool func(ctx context.Context, t registry.Target) (adapter.Pool, error)
}

func NewManager(reg *registry.Registry) *Manager {
	return &Manager{
		registry: reg,
		pools:    make(map[string]adapter.Pool),
		newPool:  adapter.NewPool,
	}
}

// AddTarget validates the configuration, establishes the pool and only then
// registers the target. On any failure nothing is registered.
func (m *Manager) AddTarget(ctx context.Context, target registry.Target) error {
	if err := validate(&target); err != nil {
		return err
	}

	p, err := m.newPool(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to establish pool for %s: %w", target.ID, err)
	}

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		p.Close()
		return fmt.Errorf("pool manager is shut down")
	}
	old := m.pools[target.ID]
	m.pools[target.ID] = p
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}

	m.registry.Add(target)
	log.Printf("Registered target %s (%s, pool max %d)", target.ID, target.Driver, target.MaxPoolSize)
	return nil
}

// RemoveTarget drains and closes the target's pool. Unknown ids are a no-op.
func (m *Manager) RemoveTarget(id string) {
	m.mu.Lock()
	p, ok := m.pools[id]
	delete(m.pools, id)
	m.mu.Unlock()

	m.registry.Remove(id)

	if !ok {
		return
	}

	// Close blocks until in-flight borrows are returned.
	p.Close()
	log.Printf("Removed target %s", id)
}

// Acquire borrows a scoped connection from the named pool, waiting at most
// the target's configured timeout.
func (m *Manager) Acquire(ctx context.Context, id string) (adapter.Conn, error) {
	m.mu.RLock()
	p, ok := m.pools[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, id)
	}

	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	m.acquires.Add(1)
	return conn, nil
}

// ConnectionCount reports the pool occupancy for one target, zero if the
// target is unknown.
func (m *Manager) ConnectionCount(id string) int {
	m.mu.RLock()
	p, ok := m.pools[id]
	m.mu.RUnlock()

	if !ok {
		return 0
	}
	return p.ConnectionCount()
}

// Acquires reports the total number of successful acquisitions since start.
func (m *Manager) Acquires() int64 {
	return m.acquires.Load()
}

// Shutdown closes every pool and blocks until all are drained. Idempotent.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	pools := m.pools
	m.pools = make(map[string]adapter.Pool)
	m.mu.Unlock()

	for id, p := range pools {
		p.Close()
		log.Printf("Closed pool for target %s", id)
	}
}

func validate(t *registry.Target) error {
	if t.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidConfig)
	}
	if t.MaxPoolSize < 1 {
		return fmt.Errorf("%w: max pool size must be at least 1", ErrInvalidConfig)
	}

	switch t.Driver {
	case "sqlite", "sqlite3":
		// File-backed, no host to reach.
		if t.Database == "" {
			return fmt.Errorf("%w: database path is required for sqlite", ErrInvalidConfig)
		}
	default:
		if t.Host == "" {
			return fmt.Errorf("%w: host is required", ErrInvalidConfig)
		}
		if t.Port <= 0 {
			return fmt.Errorf("%w: port must be positive", ErrInvalidConfig)
		}
	}

	if t.Timeout <= 0 {
		t.Timeout = defaultTimeout
	}
	return nil
}
