// Package models holds the value types shared between the probe engine,
// cache, persistence sinks and the control surface.
package models

import "time"

// Status is the classified outcome of a single probe.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// ProbeResult is the outcome of one health probe against one target.
// Immutable once constructed.
type ProbeResult struct {
	Timestamp       time.Time `json:"timestamp"`
	TargetID        string    `json:"target_id"`
	Status          Status    `json:"status"`
	ResponseTime    float64   `json:"response_time"` // seconds
	ConnectionCount int       `json:"connection_count"`
	ActiveQueries   int       `json:"active_queries"`
	CPUUsage        float64   `json:"cpu_usage"`
	MemoryUsage     float64   `json:"memory_usage"`
	DiskUsage       float64   `json:"disk_usage"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// BatchReport aggregates one "check all targets" run. Results are ordered
// by registry enumeration order, one per target attempted.
type BatchReport struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	Results      []ProbeResult  `json:"results"`
	StatusCounts map[Status]int `json:"status_counts"`
}

// NewBatchReport builds a report over the given results and tallies statuses.
func NewBatchReport(results []ProbeResult) *BatchReport {
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
	}

	return &BatchReport{
		GeneratedAt:  time.Now(),
		Results:      results,
		StatusCounts: counts,
	}
}
