package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/cache"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
)

func result(targetID string, status models.Status) models.ProbeResult {
	return models.ProbeResult{
		Timestamp:    time.Now(),
		TargetID:     targetID,
		Status:       status,
		ResponseTime: 0.05,
	}
}

func TestMemoryCache_GetMissOnEmpty(t *testing.T) {
	c := cache.NewMemoryCache()

	_, ok := c.Get(context.Background(), "db-1")

	assert.False(t, ok)
}

func TestMemoryCache_SetThenGet(t *testing.T) {
	c := cache.NewMemoryCache()
	stored := result("db-1", models.StatusHealthy)

	c.Set(context.Background(), "db-1", stored, time.Minute)

	got, ok := c.Get(context.Background(), "db-1")
	require.True(t, ok)
	assert.Equal(t, stored, got)
}

func TestMemoryCache_ExpiredEntryIsMiss(t *testing.T) {
	c := cache.NewMemoryCache()

	c.Set(context.Background(), "db-1", result("db-1", models.StatusHealthy), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(context.Background(), "db-1")
	assert.False(t, ok)
}

func TestMemoryCache_SetOverwrites(t *testing.T) {
	c := cache.NewMemoryCache()

	c.Set(context.Background(), "db-1", result("db-1", models.StatusHealthy), time.Minute)
	c.Set(context.Background(), "db-1", result("db-1", models.StatusCritical), time.Minute)

	got, ok := c.Get(context.Background(), "db-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusCritical, got.Status)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := cache.NewMemoryCache()

	c.Set(context.Background(), "db-1", result("db-1", models.StatusHealthy), time.Minute)
	c.Delete(context.Background(), "db-1")

	_, ok := c.Get(context.Background(), "db-1")
	assert.False(t, ok)
}

func TestMemoryCache_EntriesAreIndependent(t *testing.T) {
	c := cache.NewMemoryCache()

	c.Set(context.Background(), "db-1", result("db-1", models.StatusHealthy), time.Minute)
	c.Set(context.Background(), "db-2", result("db-2", models.StatusWarning), time.Minute)
	c.Delete(context.Background(), "db-1")

	got, ok := c.Get(context.Background(), "db-2")
	require.True(t, ok)
	assert.Equal(t, models.StatusWarning, got.Status)
}
