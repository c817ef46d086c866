package resilience

import (
	"context"
	"sync"

	"github.com/jonwraymond/datagate/observe"
)

// FallbackFunc is one alternate call path for a resource.
type FallbackFunc func(ctx context.Context) ([]byte, error)

// FallbackManager chains a primary call with ordered fallback calls per
// resource name. Fallbacks run only after the primary call has failed.
type FallbackManager struct {
	logger observe.Logger

	mu        sync.RWMutex
	fallbacks map[string][]FallbackFunc
}

// NewFallbackManager creates a fallback manager. logger may be nil.
func NewFallbackManager(logger observe.Logger) *FallbackManager {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &FallbackManager{
		logger:    logger,
		fallbacks: make(map[string][]FallbackFunc),
	}
}

// Register appends a fallback for resource. Fallbacks are attempted in
// registration order.
func (f *FallbackManager) Register(resource string, fn FallbackFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallbacks[resource] = append(f.fallbacks[resource], fn)
}

// Registered returns the number of fallbacks for resource.
func (f *FallbackManager) Registered(resource string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.fallbacks[resource])
}

// Execute invokes primary; on failure it tries each registered fallback in
// order and returns the first success. When every fallback fails the
// original primary error is returned so the caller always sees the root
// cause; fallback errors are logged at warning level and swallowed.
func (f *FallbackManager) Execute(ctx context.Context, resource string, primary FallbackFunc) ([]byte, error) {
	result, primaryErr := primary(ctx)
	if primaryErr == nil {
		return result, nil
	}

	f.mu.RLock()
	chain := f.fallbacks[resource]
	f.mu.RUnlock()

	if len(chain) > 0 {
		f.logger.Warn(ctx, "primary call failed, trying fallbacks",
			observe.Field{Key: "resource", Value: resource},
			observe.Field{Key: "error", Value: primaryErr.Error()})
	}

	for i, fallback := range chain {
		result, err := fallback(ctx)
		if err == nil {
			f.logger.Info(ctx, "fallback succeeded",
				observe.Field{Key: "resource", Value: resource},
				observe.Field{Key: "fallback_index", Value: i})
			return result, nil
		}
		f.logger.Warn(ctx, "fallback failed",
			observe.Field{Key: "resource", Value: resource},
			observe.Field{Key: "fallback_index", Value: i},
			observe.Field{Key: "error", Value: err.Error()})
	}

	return nil, primaryErr
}
