package app

import (
	"log/slog"
	"os"
	"strings"
)

// LogLevel is adjustable at runtime through the configuration resource.
var LogLevel = new(slog.LevelVar)

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil {
		LogLevel.Set(ParseLogLevel(cfg.LogLevel))
	}
	opts := &slog.HandlerOptions{Level: LogLevel}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// ParseLogLevel maps a level name to a slog level. Unknown names map to
// INFO.
func ParseLogLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
