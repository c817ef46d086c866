package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/datagate/observe"
)

// RedisStoreConfig configures the remote tier.
type RedisStoreConfig struct {
	// URL is a redis connection URL (redis://[:password@]host:port/db).
	URL string

	// KeyPrefix is prepended to every key so multiple deployments can
	// share one Redis instance.
	// Default: "datagate:"
	KeyPrefix string

	// DialTimeout bounds the initial connection probe.
	// Default: 2 seconds
	DialTimeout time.Duration
}

// RedisStore is the remote cache tier. A failed connection never blocks
// construction: the store starts degraded and the Manager operates on the
// local tier until the next successful Ping.
type RedisStore struct {
	client    *redis.Client
	config    RedisStoreConfig
	logger    observe.Logger
	connected atomic.Bool
}

// NewRedisStore creates the remote tier from a connection URL.
func NewRedisStore(ctx context.Context, config RedisStoreConfig, logger observe.Logger) (*RedisStore, error) {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "datagate:"
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, err
	}

	s := &RedisStore{
		client: redis.NewClient(opts),
		config: config,
		logger: logger,
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.DialTimeout)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		// Degrade instead of failing: the manager runs local-only until
		// a later ping succeeds.
		s.logger.Warn(ctx, "remote store initial connection failed",
			observe.Field{Key: "error", Value: err.Error()})
	} else {
		s.connected.Store(true)
		s.logger.Info(ctx, "remote store connected",
			observe.Field{Key: "addr", Value: opts.Addr})
	}

	return s, nil
}

// Get retrieves a value. Returns ErrRemoteMiss on miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.connected.Load() {
		return nil, ErrRemoteUnavailable
	}

	data, err := s.client.Get(ctx, s.config.KeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRemoteMiss
		}
		s.handleError(err)
		return nil, err
	}
	return data, nil
}

// Set stores a value with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.connected.Load() {
		return ErrRemoteUnavailable
	}

	if err := s.client.Set(ctx, s.config.KeyPrefix+key, value, ttl).Err(); err != nil {
		s.handleError(err)
		return err
	}
	return nil
}

// Delete removes a value. Idempotent.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if !s.connected.Load() {
		return ErrRemoteUnavailable
	}

	if err := s.client.Del(ctx, s.config.KeyPrefix+key).Err(); err != nil {
		s.handleError(err)
		return err
	}
	return nil
}

// DeleteMatching removes all keys containing substr. Matching is
// substring-based, mirroring the local tier.
func (s *RedisStore) DeleteMatching(ctx context.Context, substr string) error {
	if !s.connected.Load() {
		return ErrRemoteUnavailable
	}

	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+"*"+substr+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			s.handleError(err)
			return err
		}
	}
	if err := iter.Err(); err != nil {
		s.handleError(err)
		return err
	}
	return nil
}

// Clear removes every key under this store's prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.DeleteMatching(ctx, "")
}

// Ping probes the store and updates the connected flag.
func (s *RedisStore) Ping(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	if err != nil {
		s.handleError(err)
		return err
	}
	if !s.connected.Load() {
		s.connected.Store(true)
		s.logger.Info(ctx, "remote store connection restored")
	}
	return nil
}

// Connected reports the last known reachability.
func (s *RedisStore) Connected() bool {
	return s.connected.Load()
}

// Close releases the client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) handleError(err error) {
	if s.connected.Load() {
		s.connected.Store(false)
		s.logger.Warn(context.Background(), "remote store degraded",
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// Ensure RedisStore implements RemoteStore
var _ RemoteStore = (*RedisStore)(nil)
