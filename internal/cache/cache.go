// Package cache shares recently computed probe results so overlapping
// checks do not re-probe the same target. Caching is an optimization:
// every implementation degrades to "always miss" when its backing store
// is unavailable.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
)

// ResultCache maps target id to its last computed probe result.
type ResultCache interface {
	// Get returns the cached result if present and unexpired.
	Get(ctx context.Context, targetID string) (models.ProbeResult, bool)

	// Set stores the result with the given TTL, overwriting any prior entry.
	Set(ctx context.Context, targetID string, result models.ProbeResult, ttl time.Duration)

	// Delete drops the entry for a target, if any.
	Delete(ctx context.Context, targetID string)
}

type memoryEntry struct {
	result models.ProbeResult
	expiry time.Time
}

// MemoryCache is the in-process implementation. Expired entries are
// invalidated lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, targetID string) (models.ProbeResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[targetID]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiry) {
		return models.ProbeResult{}, false
	}
	return entry.result, true
}

func (c *MemoryCache) Set(_ context.Context, targetID string, result models.ProbeResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[targetID] = memoryEntry{
		result: result,
		expiry: time.Now().Add(ttl),
	}
}

func (c *MemoryCache) Delete(_ context.Context, targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, targetID)
}
