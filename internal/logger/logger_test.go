package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.level); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json")

	log.Debug("hidden")
	log.Info("sampled", "n", 64)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "sampled" {
		t.Errorf("expected msg 'sampled', got %v", entry["msg"])
	}
	if entry["n"] != float64(64) {
		t.Errorf("expected n 64, got %v", entry["n"])
	}
}

func TestNewWithWriter_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "pretty")

	log.Debug("fit", "class", "O(n)")

	out := buf.String()
	if !strings.Contains(out, "fit") || !strings.Contains(out, "class=O(n)") {
		t.Errorf("unexpected pretty output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no colour when not writing to a terminal: %q", out)
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "text")

	log.Info("hidden")
	log.Warn("busy host")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected text handler output, got %q", out)
	}
}
