package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key after
// normalization. Callers building keys from request parameters should use
// Keyer, which collapses long keys to a hash well below this limit.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey        = errors.New("cache: key is invalid")
	ErrKeyTooLong        = errors.New("cache: key exceeds max length")
	ErrRemoteUnavailable = errors.New("cache: remote store unavailable")
	ErrRemoteMiss        = errors.New("cache: key not in remote store")
)

// RemoteStore is the optional shared tier behind the in-process store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get returns ErrRemoteMiss on a clean miss; any other error means
//   the store is degraded and the caller falls back to the local tier.
// - Availability: Connected must be cheap; it may lag the true state.
type RemoteStore interface {
	// Get retrieves a value. Returns ErrRemoteMiss on miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value. Idempotent.
	Delete(ctx context.Context, key string) error

	// DeleteMatching removes all keys containing the given substring.
	DeleteMatching(ctx context.Context, substr string) error

	// Clear removes all values owned by this store.
	Clear(ctx context.Context) error

	// Ping probes the store for reachability.
	Ping(ctx context.Context) error

	// Connected reports the last known reachability.
	Connected() bool

	// Close releases the underlying connection.
	Close() error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
