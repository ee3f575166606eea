package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Format: "json", Output: &buf})

	logger.Debug("hidden")
	logger.Info("driver acquired", "body", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record["msg"] != "driver acquired" || record["body"] != float64(7) {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestInit_SetsGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	Init(Options{Level: "debug", Output: &buf})
	Debug("sensor status", "status", "available")

	if !strings.Contains(buf.String(), "sensor status") {
		t.Errorf("expected text output, got %q", buf.String())
	}
	if L() != slog.Default() {
		t.Error("expected Init to install the slog default")
	}
}
