// Package logging owns the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Logger returns the shared logger, creating a stdout logger on first use.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newLogger(os.Stdout)
	}
	return logger
}

// SetOutput replaces the shared logger with one writing to w.
func SetOutput(w io.Writer) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
	return logger
}

// ToFile redirects logging to path, appending. Terminal programs use this so
// log lines never land on the alternate screen.
func ToFile(path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	SetOutput(f)
	return f, nil
}

// ParseLevel maps LOG_LEVEL values onto slog levels; unknown values mean info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer) *slog.Logger {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
