package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

func target(id string) registry.Target {
	return registry.Target{
		ID:     id,
		Host:   "localhost",
		Port:   5432,
		Driver: "postgres",
	}
}

func TestRegistry_ListPreservesRegistrationOrder(t *testing.T) {
	reg := registry.New()

	reg.Add(target("db-c"))
	reg.Add(target("db-a"))
	reg.Add(target("db-b"))

	listed := reg.List()

	assert.Len(t, listed, 3)
	assert.Equal(t, "db-c", listed[0].ID)
	assert.Equal(t, "db-a", listed[1].ID)
	assert.Equal(t, "db-b", listed[2].ID)
}

func TestRegistry_AddExistingIDOverwritesInPlace(t *testing.T) {
	reg := registry.New()

	reg.Add(target("db-1"))
	reg.Add(target("db-2"))

	updated := target("db-1")
	updated.Name = "renamed"
	reg.Add(updated)

	listed := reg.List()
	assert.Len(t, listed, 2)
	assert.Equal(t, "db-1", listed[0].ID)
	assert.Equal(t, "renamed", listed[0].Name)
}

func TestRegistry_RemoveUnknownIsNoOp(t *testing.T) {
	reg := registry.New()
	reg.Add(target("db-1"))

	reg.Remove("missing")
	reg.Remove("missing")

	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RemoveDropsFromOrder(t *testing.T) {
	reg := registry.New()
	reg.Add(target("db-1"))
	reg.Add(target("db-2"))
	reg.Add(target("db-3"))

	reg.Remove("db-2")

	listed := reg.List()
	assert.Len(t, listed, 2)
	assert.Equal(t, "db-1", listed[0].ID)
	assert.Equal(t, "db-3", listed[1].ID)

	_, ok := reg.Get("db-2")
	assert.False(t, ok)
}

func TestRegistry_ListIsSnapshot(t *testing.T) {
	reg := registry.New()
	reg.Add(target("db-1"))

	snapshot := reg.List()
	reg.Add(target("db-2"))

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, reg.Len())
}

func TestTarget_RedactedClearsPassword(t *testing.T) {
	tgt := target("db-1")
	tgt.Password = "secret"

	redacted := tgt.Redacted()

	assert.Empty(t, redacted.Password)
	assert.Equal(t, "secret", tgt.Password)
}
