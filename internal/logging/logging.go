// Package logging builds the process logger. The TUI owns the terminal, so logs go to a
// rotating file when one is configured and to stderr at warn otherwise.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level       string
	Environment string
	WithSource  bool
	// File enables a rotating log file. Empty logs to stderr.
	File string
}

func levelFromString(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("invalid log level: " + level)
	}
}

// New returns a logger and a closer for its output.
func New(cfg Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	lvl, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out, closer = lj, lj
	} else if strings.TrimSpace(cfg.Level) == "" {
		lvl = slog.LevelWarn
	}
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: lvl, AddSource: cfg.WithSource}
	var h slog.Handler
	if strings.ToLower(cfg.Environment) == "prod" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
