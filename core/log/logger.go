package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	SetLevel(slog.LevelInfo)
}

func Info(msg string, args ...any) {
	logger.Load().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}

func SetLevel(level slog.Level) {
	SetOutput(os.Stdout, level)
}

// SetOutput swaps the handler, mostly so tests can capture log lines.
func SetOutput(w io.Writer, level slog.Level) {
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
