// Package scheduler fans "check all targets" requests out across the probe
// engine under a global concurrency cap and folds the outcomes back into
// ordered batch reports.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/cache"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

// ErrUnknownTarget - checkOne requested for an id the registry does not hold
var ErrUnknownTarget = errors.New("scheduler: unknown target")

// Prober executes one target's health probe. The probe engine satisfies
// this; tests substitute fakes.
type Prober interface {
	Probe(ctx context.Context, target registry.Target) models.ProbeResult
}

// Sink receives every fresh probe result. Recording is best-effort: sink
// failures are logged and never alter the result or abort the batch.
type Sink interface {
	Record(ctx context.Context, result models.ProbeResult) error
}

// Scheduler coordinates batches. The semaphore bounds in-flight probes
// process-wide, across overlapping batches and manual checks alike; the
// sub-batch size caps peak pressure even when the global bound is generous.
type Scheduler struct {
	registry  *registry.Registry
	prober    Prober
	cache     cache.ResultCache
	sinks     []Sink
	sem       *semaphore.Weighted
	batchSize int
	cacheTTL  time.Duration
}

func NewScheduler(reg *registry.Registry, prober Prober, results cache.ResultCache, sinks []Sink, maxConcurrent, batchSize int, cacheTTL time.Duration) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}

	return &Scheduler{
		registry:  reg,
		prober:    prober,
		cache:     results,
		sinks:     sinks,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		batchSize: batchSize,
		cacheTTL:  cacheTTL,
	}
}

// CheckAll probes every target registered at call time and returns one
// result per target in registry order. Individual probe failures surface as
// critical results, never as batch errors; cancellation converts the
// remaining probes to critical "cancelled" results.
func (s *Scheduler) CheckAll(ctx context.Context) *models.BatchReport {
	targets := s.registry.List()
	results := make([]models.ProbeResult, len(targets))

	for lo := 0; lo < len(targets); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(targets))

		// Sub-batches run strictly in sequence; probes within one
		// sub-batch run unordered and are re-sorted by index.
		var g errgroup.Group
		for i := lo; i < hi; i++ {
			target := targets[i]

			if cached, ok := s.cache.Get(ctx, target.ID); ok {
				results[i] = cached
				continue
			}

			idx := i
			g.Go(func() error {
				results[idx] = s.runProbe(ctx, target)
				return nil
			})
		}
		g.Wait()
	}

	report := models.NewBatchReport(results)
	log.Printf("Batch complete: %d targets (%d healthy, %d warning, %d critical)",
		len(results),
		report.StatusCounts[models.StatusHealthy],
		report.StatusCounts[models.StatusWarning],
		report.StatusCounts[models.StatusCritical])
	return report
}

// CheckOne probes a single target through the same cache-aside path and
// global concurrency bound as batch work.
func (s *Scheduler) CheckOne(ctx context.Context, targetID string) (models.ProbeResult, error) {
	target, ok := s.registry.Get(targetID)
	if !ok {
		return models.ProbeResult{}, fmt.Errorf("%w: %s", ErrUnknownTarget, targetID)
	}

	if cached, ok := s.cache.Get(ctx, target.ID); ok {
		return cached, nil
	}

	return s.runProbe(ctx, target), nil
}

// runProbe executes one probe under the global semaphore, then caches and
// records the fresh result.
func (s *Scheduler) runProbe(ctx context.Context, target registry.Target) models.ProbeResult {
	// Acquire can succeed on a done context when capacity is free, so the
	// context is checked explicitly first.
	if err := ctx.Err(); err != nil {
		return cancelled(target.ID, err)
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return cancelled(target.ID, err)
	}
	defer s.sem.Release(1)

	result := s.prober.Probe(ctx, target)

	s.cache.Set(ctx, target.ID, result, s.cacheTTL)
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, result); err != nil {
			log.Printf("Failed to record result for %s: %v", target.ID, err)
		}
	}

	return result
}

func cancelled(targetID string, err error) models.ProbeResult {
	return models.ProbeResult{
		Timestamp:    time.Now(),
		TargetID:     targetID,
		Status:       models.StatusCritical,
		ErrorMessage: fmt.Sprintf("check cancelled: %v", err),
	}
}
