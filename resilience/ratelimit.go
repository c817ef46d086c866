package resilience

import (
	"context"
	"sync"
	"time"
)

// SlidingLimiterConfig configures the sliding-window rate limiter.
type SlidingLimiterConfig struct {
	// DefaultLimit is the per-identifier request budget per window when
	// Allow is called without an explicit limit.
	// Default: 60
	DefaultLimit int

	// Window is the trailing admission window.
	// Default: 60 seconds
	Window time.Duration

	// PruneInterval bounds how often old timestamps are compacted per
	// identifier. Counting is always exact; pruning only bounds memory.
	// Default: 10 seconds
	PruneInterval time.Duration

	// Now overrides the time source. Used in tests.
	Now func() time.Time
}

// SlidingLimiter is a per-identifier sliding-window rate limiter. Each
// identifier keeps the timestamps of its recent requests; admission is
// granted while fewer than the limit fall inside the trailing window.
//
// The current timestamp is recorded whether or not the request is admitted,
// so a rejected burst keeps the window saturated instead of resetting it
// early.
type SlidingLimiter struct {
	config SlidingLimiterConfig

	mu      sync.Mutex
	windows map[string]*rateWindow
}

type rateWindow struct {
	times     []time.Time
	lastPrune time.Time
}

// NewSlidingLimiter creates a new sliding-window rate limiter.
func NewSlidingLimiter(config SlidingLimiterConfig) *SlidingLimiter {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 60
	}
	if config.Window <= 0 {
		config.Window = 60 * time.Second
	}
	if config.PruneInterval <= 0 {
		config.PruneInterval = 10 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &SlidingLimiter{
		config:  config,
		windows: make(map[string]*rateWindow),
	}
}

// Allow reports whether a request for identifier is admitted under the
// default limit.
func (l *SlidingLimiter) Allow(identifier string) bool {
	return l.AllowN(identifier, l.config.DefaultLimit)
}

// AllowN reports whether a request for identifier is admitted under the
// given limit.
func (l *SlidingLimiter) AllowN(identifier string, limit int) bool {
	if limit <= 0 {
		limit = l.config.DefaultLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.config.Now()
	windowStart := now.Add(-l.config.Window)

	w, ok := l.windows[identifier]
	if !ok {
		w = &rateWindow{lastPrune: now}
		l.windows[identifier] = w
	}

	// Compact the slice at most once per prune interval.
	if now.Sub(w.lastPrune) > l.config.PruneInterval {
		retained := w.times[:0]
		for _, t := range w.times {
			if t.After(windowStart) {
				retained = append(retained, t)
			}
		}
		w.times = retained
		w.lastPrune = now
	}

	recent := 0
	for _, t := range w.times {
		if t.After(windowStart) {
			recent++
		}
	}

	admitted := recent < limit
	w.times = append(w.times, now)
	return admitted
}

// Execute runs the operation if identifier is admitted, otherwise returns
// ErrRateLimitExceeded without invoking it.
func (l *SlidingLimiter) Execute(ctx context.Context, identifier string, op func(context.Context) error) error {
	if !l.Allow(identifier) {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// ActiveIdentifiers returns the number of identifiers with tracked windows.
// Windows are never removed during the process lifetime; the identifier set
// is bounded by the set of upstream providers.
func (l *SlidingLimiter) ActiveIdentifiers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
