// Package logging constructs the single process-wide structured logger
// used by every subcommand. It is initialized once at startup and must
// not be reconfigured afterward — callers that need a logger just call
// Default(), they never construct their own handler.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once    sync.Once
	logger  *slog.Logger
	current slog.Leveler = slog.LevelError
)

// Init installs the process-wide JSON logger at the given minimum level.
// Only the first call has any effect; subsequent calls are no-ops, which
// is what keeps the logger thread-safe and immutable after startup.
func Init(level slog.Level) {
	once.Do(func() {
		current = level
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: current})
		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

// Default returns the process-wide logger, initializing it at the
// default error level if Init has not been called yet.
func Default() *slog.Logger {
	Init(slog.LevelError)
	return logger
}
