package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// TrackerConfig configures the health tracker.
type TrackerConfig struct {
	// Timeout bounds one full CheckAll sweep.
	// Default: 10 seconds
	Timeout time.Duration

	// Now overrides the time source. Used in tests.
	Now func() time.Time
}

// Tracker runs dependency probes and keeps the latest result per name.
type Tracker struct {
	config TrackerConfig

	mu      sync.RWMutex
	results map[string]Result
	probes  map[string]ProbeFunc
	order   []string // registration order
}

// NewTracker creates a health tracker.
func NewTracker(config TrackerConfig) *Tracker {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Tracker{
		config:  config,
		results: make(map[string]Result),
		probes:  make(map[string]ProbeFunc),
	}
}

// Check runs probe for the named dependency, stores the result, and returns
// it. The probe's own error never escapes; it is folded into the result.
func (t *Tracker) Check(ctx context.Context, name string, probe ProbeFunc) Result {
	start := time.Now()
	err := probe(ctx)
	elapsed := time.Since(start)

	result := Result{
		Status:       StatusHealthy,
		ResponseTime: elapsed.Seconds(),
		LastCheck:    t.config.Now(),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}

	t.mu.Lock()
	if _, exists := t.results[name]; !exists {
		t.order = append(t.order, name)
	}
	t.results[name] = result
	t.mu.Unlock()

	return result
}

// Register adds a probe to run on every CheckAll sweep. Re-registering a
// name replaces its probe.
func (t *Tracker) Register(name string, probe ProbeFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.probes[name] = probe
}

// CheckAll runs every registered probe in parallel and returns the fresh
// results. The sweep is bounded by the configured timeout.
func (t *Tracker) CheckAll(ctx context.Context) map[string]Result {
	t.mu.RLock()
	probes := make(map[string]ProbeFunc, len(t.probes))
	for name, probe := range t.probes {
		probes[name] = probe
	}
	t.mu.RUnlock()

	if len(probes) == 0 {
		return map[string]Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	var resultsMu sync.Mutex
	results := make(map[string]Result, len(probes))

	g, ctx := errgroup.WithContext(ctx)
	for name, probe := range probes {
		g.Go(func() error {
			result := t.Check(ctx, name, probe)
			resultsMu.Lock()
			results[name] = result
			resultsMu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // probes never return errors; results carry them

	return results
}

// Results returns a copy of the latest result per dependency.
func (t *Tracker) Results() map[string]Result {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Result, len(t.results))
	for name, result := range t.results {
		out[name] = result
	}
	return out
}

// Overall aggregates the latest results. With no tracked dependencies the
// status is unknown; otherwise at least 80% healthy reports healthy, at
// least 50% degraded, anything less unhealthy.
func (t *Tracker) Overall() OverallHealth {
	services := t.Results()

	overall := OverallHealth{
		Status:        StatusUnknown,
		TotalServices: len(services),
		Services:      services,
	}
	if len(services) == 0 {
		return overall
	}

	for _, result := range services {
		if result.Status == StatusHealthy {
			overall.HealthyServices++
		}
	}

	overall.HealthPercentage = float64(overall.HealthyServices) / float64(overall.TotalServices) * 100

	switch {
	case overall.HealthPercentage >= 80:
		overall.Status = StatusHealthy
	case overall.HealthPercentage >= 50:
		overall.Status = StatusDegraded
	default:
		overall.Status = StatusUnhealthy
	}

	return overall
}
