// Package probe executes single-target health probes and classifies the
// outcome against configurable thresholds.
package probe

import (
	"context"
	"time"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/adapter"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/system"
)

// Acquirer hands out scoped pooled connections. The pool manager satisfies
// this; tests substitute fakes.
type Acquirer interface {
	Acquire(ctx context.Context, targetID string) (adapter.Conn, error)
	ConnectionCount(targetID string) int
}

// Engine probes one target at a time. It has no side effects beyond the
// probed connection; caching and persistence belong to the scheduler.
type Engine struct {
	pools      Acquirer
	metrics    system.Source
	thresholds Thresholds
}

func NewEngine(pools Acquirer, metrics system.Source, thresholds Thresholds) *Engine {
	return &Engine{
		pools:      pools,
		metrics:    metrics,
		thresholds: thresholds,
	}
}

// Probe runs the full health check for one target. Every failure is folded
// into a critical result carrying the error message; Probe never returns an
// error and never panics the batch.
func (e *Engine) Probe(ctx context.Context, target registry.Target) models.ProbeResult {
	start := time.Now()

	timeout := target.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := e.pools.Acquire(ctx, target.ID)
	if err != nil {
		return e.critical(target.ID, start, err)
	}
	defer conn.Release()

	if err := conn.Liveness(ctx); err != nil {
		return e.critical(target.ID, start, err)
	}

	// Load counts are best-effort; a metrics gap does not fail the probe.
	activeQueries, err := conn.ActiveQueries(ctx)
	if err != nil {
		activeQueries = 0
	}
	connectionCount := e.pools.ConnectionCount(target.ID)

	host := e.metrics.HostMetrics(ctx)

	responseTime := time.Since(start).Seconds()

	return models.ProbeResult{
		Timestamp:       time.Now(),
		TargetID:        target.ID,
		Status:          e.thresholds.Classify(responseTime, host),
		ResponseTime:    responseTime,
		ConnectionCount: connectionCount,
		ActiveQueries:   activeQueries,
		CPUUsage:        host.CPUUsagePercent,
		MemoryUsage:     host.MemoryUsagePercent,
		DiskUsage:       host.DiskUsagePercent,
	}
}

// critical builds the short-circuit result for a failed probe step: zeroed
// metrics, elapsed time so far, and the error message.
func (e *Engine) critical(targetID string, start time.Time, err error) models.ProbeResult {
	return models.ProbeResult{
		Timestamp:    time.Now(),
		TargetID:     targetID,
		Status:       models.StatusCritical,
		ResponseTime: time.Since(start).Seconds(),
		ErrorMessage: err.Error(),
	}
}
