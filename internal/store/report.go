package store

import (
	"context"
	"time"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
)

// Report summarizes health history over a time window.
type Report struct {
	GeneratedAt        time.Time             `json:"generated_at"`
	PeriodHours        int                   `json:"period_hours"`
	TotalChecks        int                   `json:"total_checks"`
	AvgResponseTime    float64               `json:"avg_response_time"`
	AvgCPUUsage        float64               `json:"avg_cpu_usage"`
	AvgMemoryUsage     float64               `json:"avg_memory_usage"`
	StatusDistribution map[models.Status]int `json:"status_distribution"`
	RecentChecks       []models.ProbeResult  `json:"recent_checks"`
}

const reportRecentLimit = 10

// Report aggregates all checks recorded in the trailing window of the
// given number of hours.
func (s *Store) Report(ctx context.Context, hours int) (*Report, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	history, err := s.History(ctx, "", since)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:        time.Now(),
		PeriodHours:        hours,
		TotalChecks:        len(history),
		StatusDistribution: make(map[models.Status]int),
	}

	if len(history) == 0 {
		return report, nil
	}

	var sumResponse, sumCPU, sumMemory float64
	for _, r := range history {
		sumResponse += r.ResponseTime
		sumCPU += r.CPUUsage
		sumMemory += r.MemoryUsage
		report.StatusDistribution[r.Status]++
	}

	n := float64(len(history))
	report.AvgResponseTime = sumResponse / n
	report.AvgCPUUsage = sumCPU / n
	report.AvgMemoryUsage = sumMemory / n

	report.RecentChecks = history[:min(reportRecentLimit, len(history))]

	return report, nil
}
