package cache

// Stats is a point-in-time snapshot of cache state. The field names are part
// of the external status payload and must stay stable across releases.
type Stats struct {
	Enabled    bool           `json:"enabled"`
	Memory     MemoryStats    `json:"memory_cache"`
	Remote     RemoteStats    `json:"remote"`
	RateLimits RateLimitStats `json:"rate_limits"`
	Counters   Counters       `json:"cache_stats"`
}

// MemoryStats describes the local tier.
type MemoryStats struct {
	Size       int     `json:"size"`
	MaxSize    int     `json:"max_size"`
	TTLSeconds float64 `json:"ttl"`
}

// RemoteStats describes the remote tier.
type RemoteStats struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// RateLimitStats describes the rate limiter as seen by the cache layer.
type RateLimitStats struct {
	Enabled           bool `json:"enabled"`
	ActiveIdentifiers int  `json:"active_identifiers"`
}

// Counters are the monotonically increasing cache counters. They reset only
// at process restart.
type Counters struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Sets     int64 `json:"sets"`
	Errors   int64 `json:"errors"`
	WarmHits int64 `json:"warm_cache_hits"`
}
