// Package registry holds the configuration of monitored targets. It owns no
// live resources; connection pools belong to the pool manager.
package registry

import (
	"sync"
	"time"
)

// Target describes one monitored database endpoint.
type Target struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Host        string        `json:"host"`
	Port        int           `json:"port"`
	Database    string        `json:"database"`
	Username    string        `json:"username"`
	Password    string        `json:"password,omitempty"`
	Driver      string        `json:"driver"` // postgres | mysql | sqlite | mongodb
	MaxPoolSize int           `json:"max_pool_size"`
	Timeout     time.Duration `json:"timeout"`
}

// Redacted returns a copy safe to expose on the control surface.
func (t Target) Redacted() Target {
	t.Password = ""
	return t
}

// Registry is an ordered, concurrency-safe set of target configurations.
// Enumeration order is registration order, which fixes the ordering of
// batch reports.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	targets map[string]Target
}

func New() *Registry {
	return &Registry{
		targets: make(map[string]Target),
	}
}

// Add registers a target. Re-registering an existing id overwrites its
// configuration but keeps its position in the enumeration order.
func (r *Registry) Add(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.targets[t.ID] = t
}

// Remove drops a target. Unknown ids are a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[id]; !exists {
		return
	}

	delete(r.targets, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) Get(id string) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.targets[id]
	return t, ok
}

// List returns a snapshot of all targets in registration order. Targets
// added after the snapshot is taken are not reflected in it.
func (r *Registry) List() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Target, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.targets[id])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
