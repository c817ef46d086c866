// Package cache provides the tiered cache shared by every provider adapter.
//
// It combines a fixed-capacity in-process store (MemoryStore, per-entry TTL
// with LRU eviction) with an optional remote store (RedisStore). The Manager
// orchestrates the two tiers, tracks hit/miss/error counters, and owns
// background cache-warming tasks.
package cache
