// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Subcommands log to stderr; the TUI logs to a file so the alt screen stays clean.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LogFileName is the debug log written inside the config directory.
const LogFileName = "debug.log"

// Init configures the default slog logger.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// OpenFile opens (creating if needed) the debug log inside configDir for
// appending. An empty configDir disables file logging and returns io.Discard.
func OpenFile(configDir string) (io.WriteCloser, error) {
	if configDir == "" {
		return nopCloser{io.Discard}, nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(configDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
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
