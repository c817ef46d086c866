package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/datagate/cache"
	"github.com/jonwraymond/datagate/health"
	"github.com/jonwraymond/datagate/observe"
	"github.com/jonwraymond/datagate/resilience"
	"github.com/jonwraymond/datagate/secret"
)

// Request describes one protected provider operation.
type Request struct {
	// Provider names the upstream dependency. Required. It identifies the
	// circuit breaker, the rate-limit window, and the fallback chain.
	Provider string

	// Operation is the logical operation within the provider, used for
	// telemetry. Optional.
	Operation string

	// Key is the cache key. When empty it is derived from Provider and
	// Params. Keys are validated and long keys must already be collapsed
	// (see cache.Keyer).
	Key string

	// Params are the request parameters the cache key is derived from
	// when Key is empty.
	Params map[string]string

	// TTL overrides the default cache TTL for this result. <= 0 uses the
	// configured default.
	TTL time.Duration

	// Limit overrides the per-minute rate limit for this provider. <= 0
	// uses the configured default.
	Limit int

	// Retryable overrides which errors are retried. Nil retries every
	// upstream error except context cancellation.
	Retryable func(err error) bool

	// Call performs the upstream request. Required. Timeouts are its own
	// concern (typically the HTTP client's); the gateway imposes no
	// wall-clock cap beyond retry delays.
	Call observe.FetchFunc
}

// Gateway composes the resilience and caching core behind one handle,
// constructed once at process start and passed to every adapter.
type Gateway struct {
	config     Config
	cache      *cache.Manager
	keyer      *cache.Keyer
	limiter    *resilience.SlidingLimiter // nil when rate limiting is disabled
	registry   *resilience.Registry
	retry      *resilience.Retry
	fallbacks  *resilience.FallbackManager
	health     *health.Tracker
	middleware *observe.Middleware
	metrics    observe.Metrics
	logger     observe.Logger
}

// New creates a Gateway. obs may be nil, in which case telemetry is
// discarded. The remote store URL is resolved through the secret resolver
// before any connection is attempted.
func New(ctx context.Context, config Config, obs observe.Observer) (*Gateway, error) {
	config.applyDefaults()

	var (
		logger     observe.Logger
		metrics    observe.Metrics
		middleware *observe.Middleware
	)
	if obs != nil {
		logger = obs.Logger()
		mw, err := observe.MiddlewareFromObserver(obs)
		if err != nil {
			return nil, fmt.Errorf("gateway: build middleware: %w", err)
		}
		middleware = mw
		metrics, err = observe.MetricsFromObserver(obs)
		if err != nil {
			return nil, fmt.Errorf("gateway: build metrics: %w", err)
		}
	} else {
		logger = observe.NopLogger()
		metrics = observe.NopMetrics()
		middleware = observe.NewMiddleware(observe.NopTracer(), metrics, logger)
	}

	var remote cache.RemoteStore
	if config.RemoteEnabled {
		resolver := secret.NewResolver()
		remoteURL, err := resolver.ResolveValue(ctx, config.RemoteURL)
		if err != nil {
			return nil, fmt.Errorf("gateway: resolve remote url: %w", err)
		}
		store, err := cache.NewRedisStore(ctx, cache.RedisStoreConfig{URL: remoteURL}, logger)
		if err != nil {
			return nil, fmt.Errorf("gateway: remote store: %w", err)
		}
		remote = store
	}

	var limiter *resilience.SlidingLimiter
	if config.RateLimitEnabled {
		limiter = resilience.NewSlidingLimiter(resilience.SlidingLimiterConfig{
			DefaultLimit: config.RequestsPerMinute,
		})
	}

	managerCfg := cache.ManagerConfig{
		Enabled:          config.CacheEnabled,
		DefaultTTL:       time.Duration(config.DefaultTTLSeconds) * time.Second,
		MaxEntries:       config.MaxEntries,
		RateLimitEnabled: config.RateLimitEnabled,
	}
	if limiter != nil {
		managerCfg.ActiveRateIdentifiers = limiter.ActiveIdentifiers
	}
	manager := cache.NewManager(managerCfg, remote, logger)

	registry := resilience.NewRegistry(resilience.RegistryConfig{
		Breaker: resilience.CircuitBreakerConfig{
			FailureThreshold: config.FailureThreshold,
			RecoveryTimeout:  config.RecoveryTimeout,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "circuit state changed",
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()})
			},
		},
	})

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts: config.MaxAttempts,
		BaseDelay:   config.BaseDelay,
		MaxDelay:    config.MaxDelay,
		Jitter:      true,
	})

	tracker := health.NewTracker(health.TrackerConfig{})
	if remote != nil {
		tracker.Register("remote_cache", remote.Ping)
	}

	return &Gateway{
		config:     config,
		cache:      manager,
		keyer:      cache.NewKeyer(),
		limiter:    limiter,
		registry:   registry,
		retry:      retry,
		fallbacks:  resilience.NewFallbackManager(logger),
		health:     tracker,
		middleware: middleware,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Fetch runs one protected provider operation: cache lookup, rate-limit
// admission, the circuit-breaker-and-retry-wrapped upstream call, cache
// write-back on success, and the fallback chain on exhausted failure.
//
// Callers can distinguish resilience.ErrRateLimitExceeded and
// resilience.ErrCircuitOpen from the provider's own errors with errors.Is.
func (g *Gateway) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.Provider == "" {
		return nil, observe.ErrMissingProviderName
	}
	if req.Call == nil {
		return nil, errors.New("gateway: request call is required")
	}

	key := req.Key
	if key == "" {
		key = g.keyer.Key(req.Provider, req.Params)
	}
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}

	if value, ok := g.cache.Get(ctx, key); ok {
		g.metrics.RecordCacheLookup(ctx, req.Provider, true)
		return value, nil
	}
	g.metrics.RecordCacheLookup(ctx, req.Provider, false)

	if g.limiter != nil && !g.limiter.AllowN(req.Provider, req.Limit) {
		g.metrics.RecordRejection(ctx, req.Provider, "rate_limit")
		return nil, resilience.ErrRateLimitExceeded
	}

	protected := g.protect(req)

	var fromPrimary bool
	result, err := g.fallbacks.Execute(ctx, req.Provider, func(ctx context.Context) ([]byte, error) {
		value, err := protected(ctx)
		if err == nil {
			fromPrimary = true
		}
		return value, err
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			g.metrics.RecordRejection(ctx, req.Provider, "circuit_open")
		}
		return nil, err
	}

	// Only primary results are cached; a fallback success is served once
	// so the next request retries the primary.
	if fromPrimary {
		if err := g.cache.Set(ctx, key, result, req.TTL); err != nil {
			g.logger.Warn(ctx, "cache write-back failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()})
		}
	}

	return result, nil
}

// protect wraps the upstream call with telemetry, retry, and the provider's
// circuit breaker, composed inside out so the breaker sees one failure per
// exhausted retry sequence.
func (g *Gateway) protect(req Request) observe.FetchFunc {
	meta := observe.ProviderMeta{
		Name:      req.Provider,
		Operation: req.Operation,
	}
	call := g.middleware.Wrap(meta, req.Call)

	retry := g.retry
	if req.Retryable != nil {
		cfg := g.retry.Config()
		cfg.RetryIf = req.Retryable
		retry = resilience.NewRetry(cfg)
	}
	breaker := g.registry.Breaker(req.Provider)

	return func(ctx context.Context) ([]byte, error) {
		var result []byte
		err := breaker.Execute(ctx, func(ctx context.Context) error {
			return retry.Execute(ctx, func(ctx context.Context) error {
				value, err := call(ctx)
				if err != nil {
					return err
				}
				result = value
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// RegisterFallback appends a fallback call path for provider, attempted in
// registration order after the primary call fails.
func (g *Gateway) RegisterFallback(provider string, fn resilience.FallbackFunc) {
	g.fallbacks.Register(provider, fn)
}

// RegisterHealthProbe adds a dependency probe to the health tracker.
func (g *Gateway) RegisterHealthProbe(name string, probe health.ProbeFunc) {
	g.health.Register(name, probe)
}

// Cache exposes the cache manager for delete/clear/warm operations and the
// stats reporting tool.
func (g *Gateway) Cache() *cache.Manager {
	return g.cache
}

// Health exposes the dependency health tracker.
func (g *Gateway) Health() *health.Tracker {
	return g.health
}

// Status is the system status payload: overall dependency health plus cache
// statistics. Registered health probes are re-run.
type Status struct {
	Health   health.OverallHealth `json:"health"`
	Cache    cache.Stats          `json:"cache"`
	HitRatio float64              `json:"hit_ratio"`
}

// Status runs the registered health probes and returns the combined system
// status payload.
func (g *Gateway) Status(ctx context.Context) Status {
	g.health.CheckAll(ctx)
	return Status{
		Health:   g.health.Overall(),
		Cache:    g.cache.Stats(),
		HitRatio: g.cache.HitRatio(),
	}
}

// Close stops warm tasks and the remote store connection.
func (g *Gateway) Close() error {
	return g.cache.Close()
}
