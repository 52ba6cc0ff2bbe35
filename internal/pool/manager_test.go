package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/adapter"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

type fakeConn struct {
	released bool
}

func (c *fakeConn) Liveness(ctx context.Context) error { return nil }

func (c *fakeConn) ActiveQueries(ctx context.Context) (int, error) { return 0, nil }

func (c *fakeConn) Release() { c.released = true }

type fakePool struct {
	closed     bool
	acquireErr error
}

func (p *fakePool) Acquire(ctx context.Context) (adapter.Conn, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return &fakeConn{}, nil
}

func (p *fakePool) ConnectionCount() int { return 1 }
func (p *fakePool) Close()               { p.closed = true }

func newTestManager(t *testing.T) (*Manager, *registry.Registry) {
	t.Helper()

	reg := registry.New()
	m := NewManager(reg)
	m.newPool = func(ctx context.Context, target registry.Target) (adapter.Pool, error) {
		return &fakePool{}, nil
	}
	return m, reg
}

func validTarget() registry.Target {
	return registry.Target{
		ID:          "db-1",
		Host:        "localhost",
		Port:        5432,
		Database:    "app",
		Driver:      "postgres",
		MaxPoolSize: 5,
		Timeout:     5 * time.Second,
	}
}

func TestManager_AddTarget_RejectsMissingID(t *testing.T) {
	m, _ := newTestManager(t)

	target := validTarget()
	target.ID = ""

	err := m.AddTarget(context.Background(), target)

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_AddTarget_RejectsBadPort(t *testing.T) {
	m, _ := newTestManager(t)

	target := validTarget()
	target.Port = 0

	err := m.AddTarget(context.Background(), target)

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_AddTarget_RejectsZeroPoolSize(t *testing.T) {
	m, _ := newTestManager(t)

	target := validTarget()
	target.MaxPoolSize = 0

	err := m.AddTarget(context.Background(), target)

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_AddTarget_SQLiteNeedsNoHost(t *testing.T) {
	m, reg := newTestManager(t)

	target := registry.Target{
		ID:          "local",
		Database:    "/tmp/app.db",
		Driver:      "sqlite",
		MaxPoolSize: 1,
	}

	err := m.AddTarget(context.Background(), target)

	require.NoError(t, err)
	_, ok := reg.Get("local")
	assert.True(t, ok)
}

func TestManager_AddTarget_NotRegisteredOnPoolFailure(t *testing.T) {
	m, reg := newTestManager(t)
	m.newPool = func(ctx context.Context, target registry.Target) (adapter.Pool, error) {
		return nil, errors.New("connection refused")
	}

	err := m.AddTarget(context.Background(), validTarget())

	assert.Error(t, err)
	assert.Equal(t, 0, reg.Len())

	_, acquireErr := m.Acquire(context.Background(), "db-1")
	assert.ErrorIs(t, acquireErr, ErrTargetNotFound)
}

func TestManager_Acquire_UnknownTarget(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Acquire(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestManager_Acquire_CountsAcquisitions(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.AddTarget(context.Background(), validTarget()))

	conn, err := m.Acquire(context.Background(), "db-1")
	require.NoError(t, err)
	conn.Release()

	assert.Equal(t, int64(1), m.Acquires())
}

func TestManager_Acquire_PropagatesExhaustion(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.AddTarget(context.Background(), validTarget()))

	m.mu.Lock()
	m.pools["db-1"] = &fakePool{acquireErr: adapter.ErrPoolExhausted}
	m.mu.Unlock()

	_, err := m.Acquire(context.Background(), "db-1")

	assert.ErrorIs(t, err, adapter.ErrPoolExhausted)
	assert.Equal(t, int64(0), m.Acquires())
}

func TestManager_RemoveTarget_ClosesPoolAndIsIdempotent(t *testing.T) {
	m, reg := newTestManager(t)

	fp := &fakePool{}
	m.newPool = func(ctx context.Context, target registry.Target) (adapter.Pool, error) {
		return fp, nil
	}
	require.NoError(t, m.AddTarget(context.Background(), validTarget()))

	m.RemoveTarget("db-1")
	m.RemoveTarget("db-1")

	assert.True(t, fp.closed)
	assert.Equal(t, 0, reg.Len())
}

func TestManager_Shutdown_ClosesEverythingAndIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)

	pools := []*fakePool{}
	m.newPool = func(ctx context.Context, target registry.Target) (adapter.Pool, error) {
		fp := &fakePool{}
		pools = append(pools, fp)
		return fp, nil
	}

	first := validTarget()
	second := validTarget()
	second.ID = "db-2"
	require.NoError(t, m.AddTarget(context.Background(), first))
	require.NoError(t, m.AddTarget(context.Background(), second))

	m.Shutdown()
	m.Shutdown()

	for _, fp := range pools {
		assert.True(t, fp.closed)
	}

	err := m.AddTarget(context.Background(), validTarget())
	assert.Error(t, err)
}
