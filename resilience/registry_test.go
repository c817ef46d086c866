package resilience

import (
	"context"
	"testing"
)

func TestRegistry_ReturnsSameBreakerPerName(t *testing.T) {
	r := NewRegistry(RegistryConfig{})

	a := r.Breaker("census")
	b := r.Breaker("census")
	if a != b {
		t.Error("Breaker() returned different instances for the same name")
	}
	if r.Breaker("weather") == a {
		t.Error("Breaker() shared an instance across names")
	}
}

func TestRegistry_BreakersIsolatePerResource(t *testing.T) {
	r := NewRegistry(RegistryConfig{
		Breaker: CircuitBreakerConfig{FailureThreshold: 1},
	})
	ctx := context.Background()

	r.Breaker("census").Execute(ctx, failing)

	if r.Breaker("census").State() != StateOpen {
		t.Error("census breaker state = closed, want open")
	}
	if r.Breaker("weather").State() != StateClosed {
		t.Error("weather breaker state = open, want closed")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(RegistryConfig{})

	r.Breaker("weather")
	r.Breaker("census")
	r.Breaker("finance")

	want := []string{"census", "finance", "weather"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
