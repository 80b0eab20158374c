package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, closeFn, err := Init(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	log.Info("hello from test", slog.String("key", "value"))
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello from test") {
		t.Errorf("log file missing message: %q", content)
	}
	if !strings.Contains(content, "level=INFO") {
		t.Errorf("log file missing level: %q", content)
	}
	if !strings.Contains(content, "time=") {
		t.Errorf("log file missing timestamp: %q", content)
	}
}

func TestInit_AppendsAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	log, closeFn, err := Init(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	log.Info("first run")
	closeFn()

	log, closeFn, err = Init(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	log.Info("second run")
	closeFn()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Errorf("log file should contain both runs: %q", string(data))
	}
}

func TestInit_NoDir(t *testing.T) {
	log, closeFn, err := Init("", slog.LevelWarn)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if log == nil {
		t.Fatal("logger should not be nil")
	}
	if err := closeFn(); err != nil {
		t.Errorf("close should be a no-op, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
