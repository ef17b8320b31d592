package services

import (
	"runtime"
	"time"
)

// HealthStatus reports service liveness
type HealthStatus struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	GoVersion      string `json:"go_version"`
	SummaryEnabled bool   `json:"summary_enabled"`
}

// HealthService answers liveness probes
type HealthService struct {
	version        string
	summaryEnabled bool
	started        time.Time
}

// NewHealthService creates the health service
func NewHealthService(version string, summaryEnabled bool) *HealthService {
	return &HealthService{
		version:        version,
		summaryEnabled: summaryEnabled,
		started:        time.Now(),
	}
}

// Check returns the current health status
func (s *HealthService) Check() HealthStatus {
	return HealthStatus{
		Status:         "healthy",
		Version:        s.version,
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		GoVersion:      runtime.Version(),
		SummaryEnabled: s.summaryEnabled,
	}
}
