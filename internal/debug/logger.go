// Package debug provides debug logging via log/slog, switched on with
// the SQLFORGE_DEBUG environment variable.
package debug

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	logger  *slog.Logger
	enabled bool
)

func init() {
	if os.Getenv("SQLFORGE_DEBUG") != "" {
		Enable()
	}
}

// Enable turns on debug logging to stderr.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	enabled = true
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Log writes a debug record when debug logging is on.
func Log(msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		l.Debug(msg, args...)
	}
}
