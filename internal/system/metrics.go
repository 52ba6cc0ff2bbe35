// Package system collects host-level utilization for probe results.
package system

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Metrics is a point-in-time host utilization snapshot. Percentages are
// 0-100; a collector failure leaves the affected field at zero.
type Metrics struct {
	CPUUsagePercent    float64
	MemoryUsagePercent float64
	DiskUsagePercent   float64
}

// Source supplies host metrics within a bounded time. Implementations must
// never fail the caller; unavailable metrics default to zero.
type Source interface {
	HostMetrics(ctx context.Context) Metrics
}

// GopsutilSource reads live host metrics. The collection window is capped
// so a hung metrics call cannot stall a probe.
type GopsutilSource struct {
	DiskPath string
	MaxWait  time.Duration
}

func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{
		DiskPath: "/",
		MaxWait:  2 * time.Second,
	}
}

func (s *GopsutilSource) HostMetrics(ctx context.Context) Metrics {
	ctx, cancel := context.WithTimeout(ctx, s.MaxWait)
	defer cancel()

	m := Metrics{}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		m.CPUUsagePercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		m.MemoryUsagePercent = vm.UsedPercent
	}

	if du, err := disk.UsageWithContext(ctx, s.DiskPath); err == nil {
		m.DiskUsagePercent = du.UsedPercent
	}

	return m
}
