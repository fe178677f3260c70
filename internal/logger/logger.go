package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger, tags every record with the service name and
// installs it as the slog default.
func New(level, format, service string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format, service)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format, service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	hostname, _ := os.Hostname()
	log := slog.New(handler).With(
		slog.String("service", service),
		slog.String("hostname", hostname),
	)
	slog.SetDefault(log)
	return log
}

// ParseLevel maps a level name to a slog level. Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
