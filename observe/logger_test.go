package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogger_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "cache warmed",
		Field{Key: "key", Value: "census:CA"},
		Field{Key: "attempt", Value: 2})

	entry := decodeLine(t, &buf)
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["msg"] != "cache warmed" {
		t.Errorf("msg = %v, want cache warmed", entry["msg"])
	}
	if entry["key"] != "census:CA" {
		t.Errorf("key = %v, want census:CA", entry["key"])
	}
	if entry["timestamp"] == nil {
		t.Error("timestamp missing")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "dropped")
	logger.Info(ctx, "dropped")
	if buf.Len() != 0 {
		t.Fatalf("below-level entries written: %q", buf.String())
	}

	logger.Warn(ctx, "kept")
	logger.Error(ctx, "kept")
	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("wrote %d lines, want 2", lines)
	}
}

func TestLogger_RedactsCredentials(t *testing.T) {
	redacted := []string{"password", "secret", "token", "api_key", "apiKey", "credential", "remote_url"}

	for _, key := range redacted {
		t.Run(key, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter("info", &buf)

			logger.Info(context.Background(), "connecting",
				Field{Key: key, Value: "hunter2"})

			entry := decodeLine(t, &buf)
			if entry[key] != "[REDACTED]" {
				t.Errorf("%s = %v, want [REDACTED]", key, entry[key])
			}
			if strings.Contains(buf.String(), "hunter2") {
				t.Error("secret value leaked into log output")
			}
		})
	}
}

func TestLogger_WithProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	scoped := logger.WithProvider(ProviderMeta{Name: "census", Operation: "population"})
	scoped.Info(context.Background(), "fetch complete")

	entry := decodeLine(t, &buf)
	if entry["provider"] != "census" {
		t.Errorf("provider = %v, want census", entry["provider"])
	}
	if entry["operation"] != "population" {
		t.Errorf("operation = %v, want population", entry["operation"])
	}

	// The parent logger is unchanged.
	buf.Reset()
	logger.Info(context.Background(), "plain")
	entry = decodeLine(t, &buf)
	if _, ok := entry["provider"]; ok {
		t.Error("provider attr leaked into parent logger")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLogLevel(tc.input); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
