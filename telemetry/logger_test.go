package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/oracle/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerStdoutOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := NewLogger(config.LoggingConfig{Level: "warn"}, &buf)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", "frame", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["frame"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestNewLoggerTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oracle.log")
	var buf bytes.Buffer
	logger, closeFn := NewLogger(config.LoggingConfig{File: path, MaxSizeMB: 1}, &buf)

	logger.Info("session started")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "session started") {
		t.Errorf("log file missing record: %q", data)
	}
	if !strings.Contains(buf.String(), "session started") {
		t.Errorf("stdout missing record: %q", buf.String())
	}
}
