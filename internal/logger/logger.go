package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelNone disables logging entirely.
const LevelNone = slog.Level(100)

// ParseLevel parses a level name; unknown names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "off", "":
		return LevelNone
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelNone}))
}

// Open creates a text logger appending to logPath. The terminal belongs to
// the UI, so nothing is ever written to stdout or stderr. The returned
// closer must be called on exit.
func Open(level slog.Level, logPath string) (*slog.Logger, io.Closer, error) {
	if level >= LevelNone || logPath == "" {
		return Discard(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	h := slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(h), file, nil
}
