package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/cache"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/config"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/eventbus"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/httpapi"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/pool"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/probe"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/scheduler"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/store"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/system"
)

// Orchestrator wires the probing engine together and manages its lifecycle.
//
// Lifecycle:
//  1. Start() - Opens the history store, selects the result cache backend,
//     connects optional collaborators and builds the scheduler
//  2. Run() - Serves the control surface; auto-starts the cadence if configured
//  3. Stop() - Gracefully stops the cadence, server and every pool
//
// Optional collaborators degrade gracefully:
//   - Redis failure: falls back to the in-memory result cache
//   - NATS failure: results are persisted but not published
type Orchestrator struct {
	config *config.Config

	registry  *registry.Registry
	pools     *pool.Manager
	results   cache.ResultCache
	history   *store.Store
	publisher *eventbus.Publisher
	engine    *probe.Engine
	scheduler *scheduler.Scheduler
	cadence   *scheduler.Cadence
	server    *httpapi.Server
}

// NewOrchestrator creates a new Orchestrator instance with the provided
// configuration. Nothing is connected until Start() is called.
func NewOrchestrator(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		config: cfg,
	}
}

// Start initializes the engine components. Must be called before Run().
func (o *Orchestrator) Start() error {
	log.Printf("Starting HealthMonkey Orchestrator...")

	history, err := store.Open(o.config.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	o.history = history
	log.Printf("History store open at %s", o.config.SQLitePath)

	o.results = o.selectCache()

	sinks := []scheduler.Sink{o.history}
	if o.config.EnableResultPublishing {
		publisher, err := eventbus.NewPublisher(o.config.NatsURL)
		if err != nil {
			log.Printf("Warning: NATS unavailable, results will not be published: %v", err)
		} else {
			o.publisher = publisher
			sinks = append(sinks, publisher)
		}
	}

	o.registry = registry.New()
	o.pools = pool.NewManager(o.registry)

	o.engine = probe.NewEngine(o.pools, system.NewGopsutilSource(), probe.Thresholds{
		ResponseTimeWarning:  o.config.Thresholds.ResponseTimeWarning,
		ResponseTimeCritical: o.config.Thresholds.ResponseTimeCritical,
		CPUWarning:           o.config.Thresholds.CPUWarning,
		CPUCritical:          o.config.Thresholds.CPUCritical,
		MemoryWarning:        o.config.Thresholds.MemoryWarning,
		MemoryCritical:       o.config.Thresholds.MemoryCritical,
		DiskWarning:          o.config.Thresholds.DiskWarning,
		DiskCritical:         o.config.Thresholds.DiskCritical,
	})

	o.scheduler = scheduler.NewScheduler(o.registry, o.engine, o.results, sinks,
		o.config.MaxConcurrentChecks, o.config.BatchSize, o.config.CacheTTL)
	o.cadence = scheduler.NewCadence(o.scheduler, o.config.CheckInterval)

	o.server = httpapi.NewServer(o)

	log.Printf("Orchestrator started (max concurrent checks: %d, batch size: %d)",
		o.config.MaxConcurrentChecks, o.config.BatchSize)
	return nil
}

// Run serves the control surface and blocks until the server shuts down.
func (o *Orchestrator) Run() error {
	if o.config.AutoStartMonitoring {
		o.cadence.Start(0)
	}

	err := o.server.Start(":" + o.config.ControlPort)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts everything down. Safe to call when not started.
func (o *Orchestrator) Stop() error {
	log.Printf("Stopping orchestrator...")

	if o.cadence != nil {
		o.cadence.Stop()
	}

	if o.server != nil {
		if err := o.server.Stop(); err != nil {
			log.Printf("Error stopping HTTP server: %v", err)
		}
	}

	if o.pools != nil {
		o.pools.Shutdown()
	}

	if o.publisher != nil {
		o.publisher.Close()
	}

	if closer, ok := o.results.(*cache.RedisCache); ok {
		closer.Close()
	}

	if o.history != nil {
		if err := o.history.Close(); err != nil {
			log.Printf("Error closing history store: %v", err)
		}
	}

	log.Printf("Orchestrator stopped")
	return nil
}

// selectCache picks Redis when configured and reachable, otherwise the
// in-memory cache. Cache selection never blocks startup on a cache fault.
func (o *Orchestrator) selectCache() cache.ResultCache {
	if o.config.RedisAddr == "" {
		log.Printf("Result cache: in-memory (TTL %s)", o.config.CacheTTL)
		return cache.NewMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(o.config.RedisAddr, o.config.RedisPassword, o.config.RedisDB)
	if err != nil {
		log.Printf("Warning: Redis unavailable, falling back to in-memory cache: %v", err)
		return cache.NewMemoryCache()
	}
	return redisCache
}

// Controller facade for the HTTP API.

func (o *Orchestrator) AddTarget(ctx context.Context, target registry.Target) error {
	return o.pools.AddTarget(ctx, target)
}

func (o *Orchestrator) RemoveTarget(id string) {
	o.pools.RemoveTarget(id)
	// Drop any cached result so a re-registered id cannot serve stale data.
	o.results.Delete(context.Background(), id)
}

func (o *Orchestrator) ListTargets() []registry.Target {
	return o.registry.List()
}

func (o *Orchestrator) CheckAll(ctx context.Context) *models.BatchReport {
	return o.scheduler.CheckAll(ctx)
}

func (o *Orchestrator) CheckOne(ctx context.Context, targetID string) (models.ProbeResult, error) {
	return o.scheduler.CheckOne(ctx, targetID)
}

func (o *Orchestrator) History(ctx context.Context, targetID string, hours int) ([]models.ProbeResult, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	return o.history.History(ctx, targetID, since)
}

func (o *Orchestrator) Report(ctx context.Context, hours int) (*store.Report, error) {
	return o.history.Report(ctx, hours)
}

func (o *Orchestrator) StartMonitoring(interval time.Duration) {
	o.cadence.Start(interval)
}

func (o *Orchestrator) StopMonitoring() {
	o.cadence.Stop()
}

func (o *Orchestrator) MonitoringRunning() bool {
	return o.cadence.Running()
}
