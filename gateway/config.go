package gateway

import "time"

// Config is the configuration surface the gateway consumes. Loading it from
// a file or flags is the embedding process's concern.
type Config struct {
	// CacheEnabled gates the whole cache layer.
	CacheEnabled bool

	// DefaultTTLSeconds is the cache TTL applied when a request does not
	// carry one.
	// Default: 300
	DefaultTTLSeconds int

	// MaxEntries is the local cache tier capacity.
	// Default: 1000
	MaxEntries int

	// RemoteEnabled turns on the Redis remote tier.
	RemoteEnabled bool

	// RemoteURL is the Redis connection URL. It may contain ${VAR}
	// environment references or secretref: references; both are resolved
	// at construction time.
	RemoteURL string

	// RateLimitEnabled gates per-provider admission control.
	RateLimitEnabled bool

	// RequestsPerMinute is the default per-provider budget in the sliding
	// 60-second window.
	// Default: 60
	RequestsPerMinute int

	// FailureThreshold is the per-provider circuit breaker threshold.
	// Default: 5
	FailureThreshold int

	// RecoveryTimeout is how long a tripped breaker waits before probing.
	// Default: 60 seconds
	RecoveryTimeout time.Duration

	// MaxAttempts bounds upstream retries, including the first attempt.
	// Default: 3
	MaxAttempts int

	// BaseDelay seeds the exponential retry backoff.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay caps the retry backoff.
	// Default: 60 seconds
	MaxDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.DefaultTTLSeconds <= 0 {
		c.DefaultTTLSeconds = 300
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = 1000
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 60
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = 60 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 60 * time.Second
	}
}
