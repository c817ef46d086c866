package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	LivenessHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "OK")
	}
}

func TestReadinessHandler(t *testing.T) {
	cases := []struct {
		name     string
		probes   map[string]ProbeFunc
		wantCode int
		wantBody string
	}{
		{
			name:     "healthy",
			probes:   map[string]ProbeFunc{"redis": healthyProbe},
			wantCode: http.StatusOK,
			wantBody: "OK",
		},
		{
			name: "degraded",
			probes: map[string]ProbeFunc{
				"redis":    healthyProbe,
				"upstream": unhealthyProbe,
			},
			wantCode: http.StatusOK,
			wantBody: "DEGRADED",
		},
		{
			name:     "unhealthy",
			probes:   map[string]ProbeFunc{"redis": unhealthyProbe},
			wantCode: http.StatusServiceUnavailable,
			wantBody: "UNHEALTHY",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tracker := NewTracker(TrackerConfig{})
			for name, probe := range tc.probes {
				tracker.Register(name, probe)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			ReadinessHandler(tracker)(rec, req)

			if rec.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			if rec.Body.String() != tc.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})
	tracker.Register("redis", healthyProbe)
	tracker.Register("upstream", func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	StatusHandler(tracker)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (degraded still serves 200)", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	// Status marshals as a string, so decode into a shape test-side.
	var response struct {
		Status          string `json:"status"`
		HealthyServices int    `json:"healthy_services"`
		TotalServices   int    `json:"total_services"`
		Services        map[string]struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"services"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if response.Status != "degraded" {
		t.Errorf("overall status = %q, want %q", response.Status, "degraded")
	}
	if response.TotalServices != 2 || response.HealthyServices != 1 {
		t.Errorf("services = %d/%d, want 1/2", response.HealthyServices, response.TotalServices)
	}
	if response.Services["upstream"].Error != "connection refused" {
		t.Errorf("upstream error = %q, want %q", response.Services["upstream"].Error, "connection refused")
	}
	if response.Timestamp == "" {
		t.Error("Timestamp is empty")
	}
}
