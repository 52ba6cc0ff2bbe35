package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Cadence runs CheckAll on a fixed interval in the background. Stop is
// graceful: it waits for the in-flight batch to finish rather than
// abandoning work.
type Cadence struct {
	scheduler       *Scheduler
	defaultInterval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewCadence(s *Scheduler, defaultInterval time.Duration) *Cadence {
	return &Cadence{
		scheduler:       s,
		defaultInterval: defaultInterval,
	}
}

// Start begins periodic checking. A non-positive interval falls back to the
// configured default. Starting while already running is a no-op.
func (c *Cadence) Start(interval time.Duration) {
	if interval <= 0 {
		interval = c.defaultInterval
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.loop(interval, c.stop, c.done)
	log.Printf("Monitoring started (interval %s)", interval)
}

// Stop signals the loop and blocks until the current batch, if any, has
// completed. Stopping while not running is a no-op.
func (c *Cadence) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	<-done

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	log.Printf("Monitoring stopped")
}

// Running reports whether the cadence loop is active.
func (c *Cadence) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Cadence) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First batch runs immediately rather than one interval in.
	c.scheduler.CheckAll(context.Background())

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.scheduler.CheckAll(context.Background())
		}
	}
}
