package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(targetID string, status models.Status, at time.Time) models.ProbeResult {
	return models.ProbeResult{
		Timestamp:       at,
		TargetID:        targetID,
		Status:          status,
		ResponseTime:    0.123,
		ConnectionCount: 4,
		ActiveQueries:   1,
		CPUUsage:        25.5,
		MemoryUsage:     40.0,
		DiskUsage:       60.0,
	}
}

func TestStore_RecordAndHistory(t *testing.T) {
	s := openStore(t)
	now := time.Now()

	recorded := sample("db-1", models.StatusHealthy, now)
	require.NoError(t, s.Record(context.Background(), recorded))

	history, err := s.History(context.Background(), "db-1", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)

	got := history[0]
	assert.Equal(t, "db-1", got.TargetID)
	assert.Equal(t, models.StatusHealthy, got.Status)
	assert.Equal(t, 0.123, got.ResponseTime)
	assert.Equal(t, 4, got.ConnectionCount)
	assert.Equal(t, 1, got.ActiveQueries)
	assert.Equal(t, 25.5, got.CPUUsage)
	assert.Empty(t, got.ErrorMessage)
}

func TestStore_RecordPreservesErrorMessage(t *testing.T) {
	s := openStore(t)

	failed := sample("db-1", models.StatusCritical, time.Now())
	failed.ErrorMessage = "connection refused"
	require.NoError(t, s.Record(context.Background(), failed))

	history, err := s.History(context.Background(), "db-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "connection refused", history[0].ErrorMessage)
}

func TestStore_HistoryMostRecentFirst(t *testing.T) {
	s := openStore(t)
	base := time.Now().Add(-time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(context.Background(),
			sample("db-1", models.StatusHealthy, base.Add(time.Duration(i)*time.Second))))
	}

	history, err := s.History(context.Background(), "db-1", base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.True(t, history[0].Timestamp.After(history[1].Timestamp))
	assert.True(t, history[1].Timestamp.After(history[2].Timestamp))
}

func TestStore_HistoryFiltersByTargetAndSince(t *testing.T) {
	s := openStore(t)
	now := time.Now()

	require.NoError(t, s.Record(context.Background(), sample("db-1", models.StatusHealthy, now)))
	require.NoError(t, s.Record(context.Background(), sample("db-2", models.StatusWarning, now)))
	require.NoError(t, s.Record(context.Background(), sample("db-1", models.StatusHealthy, now.Add(-2*time.Hour))))

	onlyDB1, err := s.History(context.Background(), "db-1", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, onlyDB1, 1)
	assert.Equal(t, "db-1", onlyDB1[0].TargetID)

	all, err := s.History(context.Background(), "", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_HistoryAppendOnlyAllowsDuplicates(t *testing.T) {
	s := openStore(t)
	at := time.Now()

	r := sample("db-1", models.StatusHealthy, at)
	require.NoError(t, s.Record(context.Background(), r))
	require.NoError(t, s.Record(context.Background(), r))

	history, err := s.History(context.Background(), "db-1", at.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestStore_ReportAggregates(t *testing.T) {
	s := openStore(t)
	now := time.Now()

	healthy := sample("db-1", models.StatusHealthy, now)
	healthy.ResponseTime = 0.1
	healthy.CPUUsage = 20

	critical := sample("db-2", models.StatusCritical, now)
	critical.ResponseTime = 0.3
	critical.CPUUsage = 40

	require.NoError(t, s.Record(context.Background(), healthy))
	require.NoError(t, s.Record(context.Background(), critical))

	report, err := s.Report(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalChecks)
	assert.InDelta(t, 0.2, report.AvgResponseTime, 1e-9)
	assert.InDelta(t, 30.0, report.AvgCPUUsage, 1e-9)
	assert.Equal(t, 1, report.StatusDistribution[models.StatusHealthy])
	assert.Equal(t, 1, report.StatusDistribution[models.StatusCritical])
	assert.Len(t, report.RecentChecks, 2)
}

func TestStore_ReportEmptyWindow(t *testing.T) {
	s := openStore(t)

	report, err := s.Report(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalChecks)
	assert.Zero(t, report.AvgResponseTime)
	assert.Empty(t, report.RecentChecks)
}
