package health

import (
	"context"
	"time"
)

// Status represents the health status of a dependency or the whole system.
type Status int

const (
	// StatusUnknown means no checks have run yet.
	StatusUnknown Status = iota
	// StatusHealthy indicates the dependency responded normally.
	StatusHealthy
	// StatusDegraded indicates the system is partially healthy. Used only
	// for the overall status; individual probes are healthy or unhealthy.
	StatusDegraded
	// StatusUnhealthy indicates the dependency failed its probe.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string form; the status payload is
// consumed externally and must stay stable.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ProbeFunc checks one dependency. A nil return means healthy.
type ProbeFunc func(ctx context.Context) error

// Result is the outcome of one dependency probe.
type Result struct {
	// Status is healthy or unhealthy.
	Status Status `json:"status"`

	// ResponseTime is how long the probe took, in seconds.
	ResponseTime float64 `json:"response_time"`

	// LastCheck is when the probe ran.
	LastCheck time.Time `json:"last_check"`

	// Error is the probe failure, empty on success.
	Error string `json:"error,omitempty"`
}

// OverallHealth aggregates every tracked dependency.
type OverallHealth struct {
	Status           Status            `json:"status"`
	HealthPercentage float64           `json:"health_percentage"`
	HealthyServices  int               `json:"healthy_services"`
	TotalServices    int               `json:"total_services"`
	Services         map[string]Result `json:"services"`
}
