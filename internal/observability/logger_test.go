package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	testCases := []struct {
		name      string
		ctx       context.Context
		expectID  string
		expectKey bool
	}{
		{name: "with request id", ctx: WithRequestID(context.Background(), "req-1"), expectID: "req-1", expectKey: true},
		{name: "without request id", ctx: context.Background(), expectKey: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := newLogger(&buf, slog.LevelInfo)

			LoggerFromContext(tc.ctx, base).Info("hello")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Expected a JSON log line, got %q", buf.String())
			}
			id, ok := entry["request_id"]
			if ok != tc.expectKey {
				t.Fatalf("Expected request_id present=%v, got %v", tc.expectKey, entry)
			}
			if ok && id != tc.expectID {
				t.Errorf("Expected request_id %q, got %v", tc.expectID, id)
			}
		})
	}
}

func TestLoggerLevel(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got %q", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("Expected warn to be written")
	}
}
