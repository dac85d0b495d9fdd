package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expect    slog.Level
		expectErr bool
	}{
		{"debug", "debug", slog.LevelDebug, false},
		{"default-info", "", slog.LevelInfo, false},
		{"warning alias", "WARNING", slog.LevelWarn, false},
		{"error", "error", slog.LevelError, false},
		{"invalid", "verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := levelFromString(tt.input)
			if tt.expectErr {
				if err == nil || !strings.Contains(err.Error(), "invalid log level") {
					t.Fatalf("expected invalid level error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if level != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, level)
			}
		})
	}
}

func TestNew_StderrDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Config{}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	log.Info("hidden")
	log.Warn("shown", "op", "archive")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "op=archive") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNew_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pastemyprompt.log")
	log, closer, err := New(Config{Level: "debug", Environment: "prod", File: path}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("saved", "prompt_id", "pr-1")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", b, err)
	}
	if rec["msg"] != "saved" || rec["prompt_id"] != "pr-1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}, nil); err == nil {
		t.Fatal("expected error")
	}
}
