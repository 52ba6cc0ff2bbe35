package probe

import (
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/system"
)

// Thresholds carries the warning and critical bounds for each probed
// metric. Values come from deployment configuration, never constants baked
// into the engine.
type Thresholds struct {
	ResponseTimeWarning  float64 // seconds
	ResponseTimeCritical float64
	CPUWarning           float64 // percent
	CPUCritical          float64
	MemoryWarning        float64
	MemoryCritical       float64
	DiskWarning          float64
	DiskCritical         float64
}

// DefaultThresholds returns the stock deployment bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ResponseTimeWarning:  2.0,
		ResponseTimeCritical: 5.0,
		CPUWarning:           80.0,
		CPUCritical:          95.0,
		MemoryWarning:        90.0,
		MemoryCritical:       95.0,
		DiskWarning:          90.0,
		DiskCritical:         95.0,
	}
}

// Classify applies the ordered threshold rules: any metric past its
// critical bound forces critical regardless of the others; any metric past
// its warning bound with no criticals yields warning; otherwise healthy.
func (t Thresholds) Classify(responseTime float64, host system.Metrics) models.Status {
	if responseTime > t.ResponseTimeCritical ||
		host.CPUUsagePercent > t.CPUCritical ||
		host.MemoryUsagePercent > t.MemoryCritical ||
		host.DiskUsagePercent > t.DiskCritical {
		return models.StatusCritical
	}

	if responseTime > t.ResponseTimeWarning ||
		host.CPUUsagePercent > t.CPUWarning ||
		host.MemoryUsagePercent > t.MemoryWarning ||
		host.DiskUsagePercent > t.DiskWarning {
		return models.StatusWarning
	}

	return models.StatusHealthy
}
