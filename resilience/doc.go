// Package resilience provides the protection patterns wrapped around every
// upstream provider call: a sliding-window rate limiter, a per-provider
// circuit breaker, retry with exponential backoff and jitter, and an ordered
// fallback chain.
//
// # Composition
//
// A protected call is built by nesting plain wrappers rather than relying on
// annotation magic, so composition order stays explicit and each layer is
// testable in isolation. The canonical order for a provider fetch is rate
// limiter, then circuit breaker, then retry:
//
//	reg := resilience.NewRegistry(resilience.RegistryConfig{})
//	exec := resilience.NewExecutor(
//	    resilience.WithLimiter(limiter),
//	    resilience.WithBreaker(reg.Breaker("census")),
//	    resilience.WithRetry(retry),
//	)
//	err := exec.Execute(ctx, "census", func(ctx context.Context) error {
//	    return callUpstream(ctx)
//	})
//
// Breakers are owned one-per-provider by a Registry constructed at process
// start; there are no package-level singletons.
package resilience
