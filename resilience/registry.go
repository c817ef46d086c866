package resilience

import (
	"sort"
	"sync"
)

// RegistryConfig configures the breaker registry.
type RegistryConfig struct {
	// Breaker is the template configuration applied to every breaker the
	// registry creates. Now/OnStateChange/IsFailure hooks are shared.
	Breaker CircuitBreakerConfig
}

// Registry owns one circuit breaker per protected resource name. Breakers
// are created lazily on first use and live for the process lifetime, which
// is acceptable for the bounded set of upstream providers.
//
// A Registry is an explicit handle constructed once at process start and
// passed to every adapter; there is no package-level instance.
type Registry struct {
	config RegistryConfig

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a breaker registry.
func NewRegistry(config RegistryConfig) *Registry {
	return &Registry{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Breaker returns the circuit breaker for name, creating it on first use.
func (r *Registry) Breaker(name string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[name]
	if !ok {
		cb = NewCircuitBreaker(r.config.Breaker)
		r.breakers[name] = cb
	}
	return cb
}

// Names returns the resource names with registered breakers, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
