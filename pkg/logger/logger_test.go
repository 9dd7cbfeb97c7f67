package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithFields(ctx, map[string]any{"order_id": "abc", "user_id": "u1"})
	logg.Info(ctx, "checkout.start")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	for key, want := range map[string]string{
		"request_id": "req-1",
		"order_id":   "abc",
		"user_id":    "u1",
		"service":    "test",
		"message":    "checkout.start",
	} {
		if entry[key] != want {
			t.Fatalf("entry[%q] = %v, want %q", key, entry[key], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: &buf})

	logg.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info line emitted despite warn level: %s", buf.String())
	}

	logg.Warn(context.Background(), "visible")
	if buf.Len() == 0 {
		t.Fatalf("warn line was filtered")
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("debug"); got != zerolog.DebugLevel {
		t.Fatalf("ParseLevel(debug) = %v", got)
	}
	if got := ParseLevel("  "); got != zerolog.InfoLevel {
		t.Fatalf("blank level should default to info, got %v", got)
	}
	if got := ParseLevel("nonsense"); got != zerolog.InfoLevel {
		t.Fatalf("junk level should default to info, got %v", got)
	}
}
