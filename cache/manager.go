package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/datagate/observe"
)

// ManagerConfig configures the tiered cache manager.
type ManagerConfig struct {
	// Enabled gates the whole cache. When false, Get always misses and
	// Set is a no-op; neither touches the counters.
	Enabled bool

	// DefaultTTL is applied when Set is called with ttl <= 0.
	// Default: 5 minutes
	DefaultTTL time.Duration

	// MaxEntries is the local tier capacity.
	// Default: 1000
	MaxEntries int

	// WarmRetryCooldown is how long a warm task sleeps after a failed
	// refresh before trying again. Intentionally shorter than typical
	// warm intervals so transient failures recover quickly.
	// Default: 1 minute
	WarmRetryCooldown time.Duration

	// RateLimitEnabled and ActiveRateIdentifiers feed the rate-limit
	// section of the stats payload. The manager does not enforce rate
	// limits itself.
	RateLimitEnabled      bool
	ActiveRateIdentifiers func() int

	// Now overrides the time source for the local tier. Used in tests.
	Now func() time.Time
}

// Manager orchestrates the local and remote tiers as a read-through,
// write-through cache.
//
// Reads consult the remote tier first when it is configured and reachable,
// then the local tier. A remote hit is NOT written back to the local tier;
// the two tiers may diverge under concurrent writers and this is accepted
// eventual-consistency behavior, not a bug. Writes go to the remote tier
// best-effort (failures are logged and counted, never surfaced) and always
// to the local tier.
type Manager struct {
	config ManagerConfig
	memory *MemoryStore
	remote RemoteStore // nil when the remote tier is disabled
	logger observe.Logger

	group singleflight.Group

	hits     atomic.Int64
	misses   atomic.Int64
	sets     atomic.Int64
	errors   atomic.Int64
	warmHits atomic.Int64

	warmMu    sync.Mutex
	warmTasks map[string]*warmTask
	closed    bool
}

// NewManager creates a tiered cache manager. remote may be nil.
func NewManager(config ManagerConfig, remote RemoteStore, logger observe.Logger) *Manager {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 5 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	if config.WarmRetryCooldown <= 0 {
		config.WarmRetryCooldown = time.Minute
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	return &Manager{
		config: config,
		memory: NewMemoryStore(MemoryStoreConfig{
			MaxEntries: config.MaxEntries,
			DefaultTTL: config.DefaultTTL,
			Now:        config.Now,
		}),
		remote:    remote,
		logger:    logger,
		warmTasks: make(map[string]*warmTask),
	}
}

// Get retrieves a value, remote tier first. Returns (nil, false) on miss.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool) {
	if !m.config.Enabled {
		return nil, false
	}

	if m.remote != nil && m.remote.Connected() {
		value, err := m.remote.Get(ctx, key)
		switch {
		case err == nil:
			m.hits.Add(1)
			return value, true
		case errors.Is(err, ErrRemoteMiss):
			// Fall through to the local tier.
		default:
			m.errors.Add(1)
			m.logger.Warn(ctx, "cache get failed on remote tier",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	if value, ok := m.memory.Get(key); ok {
		m.hits.Add(1)
		return value, true
	}

	m.misses.Add(1)
	return nil, false
}

// Set stores a value in both tiers. The remote write is best-effort; the
// local tier is authoritative. ttl <= 0 uses the default TTL.
func (m *Manager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !m.config.Enabled {
		return nil
	}
	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}

	if m.remote != nil && m.remote.Connected() {
		if err := m.remote.Set(ctx, key, value, ttl); err != nil {
			m.errors.Add(1)
			m.logger.Warn(ctx, "cache set failed on remote tier",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	m.memory.Set(key, value, ttl)
	m.sets.Add(1)
	return nil
}

// Delete removes a key from both tiers.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if m.remote != nil && m.remote.Connected() {
		if err := m.remote.Delete(ctx, key); err != nil {
			m.logger.Warn(ctx, "cache delete failed on remote tier",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}
	m.memory.Delete(key)
	return nil
}

// Clear removes entries from both tiers. A non-empty pattern removes only
// keys containing it as a substring; an empty pattern removes everything.
func (m *Manager) Clear(ctx context.Context, pattern string) error {
	if m.remote != nil && m.remote.Connected() {
		var err error
		if pattern == "" {
			err = m.remote.Clear(ctx)
		} else {
			err = m.remote.DeleteMatching(ctx, pattern)
		}
		if err != nil {
			m.logger.Warn(ctx, "cache clear failed on remote tier",
				observe.Field{Key: "pattern", Value: pattern},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	if pattern == "" {
		m.memory.Clear()
	} else {
		m.memory.DeleteMatching(pattern)
	}
	return nil
}

// Load is a read-through helper: on a miss it invokes loader, stores the
// result under key, and returns it. Concurrent misses for the same key are
// deduplicated; only one loader runs and all callers share its result.
// Loader errors are returned unchanged and never cached.
func (m *Manager) Load(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if value, ok := m.Get(ctx, key); ok {
		return value, nil
	}

	result, err, _ := m.group.Do(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if err := m.Set(ctx, key, value, ttl); err != nil {
			m.logger.Warn(ctx, "cache load store failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Stats returns a snapshot of cache state for external reporting.
func (m *Manager) Stats() Stats {
	stats := Stats{
		Enabled: m.config.Enabled,
		Memory: MemoryStats{
			Size:       m.memory.Len(),
			MaxSize:    m.memory.MaxEntries(),
			TTLSeconds: m.memory.DefaultTTL().Seconds(),
		},
		RateLimits: RateLimitStats{
			Enabled: m.config.RateLimitEnabled,
		},
		Counters: Counters{
			Hits:     m.hits.Load(),
			Misses:   m.misses.Load(),
			Sets:     m.sets.Load(),
			Errors:   m.errors.Load(),
			WarmHits: m.warmHits.Load(),
		},
	}

	if m.remote != nil {
		stats.Remote = RemoteStats{
			Enabled:   true,
			Connected: m.remote.Connected(),
		}
	}
	if m.config.ActiveRateIdentifiers != nil {
		stats.RateLimits.ActiveIdentifiers = m.config.ActiveRateIdentifiers()
	}

	return stats
}

// HitRatio returns hits/(hits+misses), or 0 before any request.
func (m *Manager) HitRatio() float64 {
	hits := m.hits.Load()
	total := hits + m.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
