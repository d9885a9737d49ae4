package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger. Debug level adds source locations for
// local troubleshooting.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	}))
}
