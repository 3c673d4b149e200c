// Package logging provides slog-based logging for haystackd.
//
// Loggers are constructed once at startup and passed explicitly into each
// component; there is no ambient global logger state. Output goes to stderr
// (human-readable when stderr is a terminal, JSON otherwise) and optionally
// to a log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Empty means no file logging.
	FilePath string
	// WriteToStderr whether to also write to stderr (default: true).
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		WriteToStderr: true,
	}
}

// Setup initializes logging and returns the logger plus a cleanup function.
// The cleanup function closes the log file, if any.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	var writers []io.Writer
	var file *os.File

	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}
	if cfg.WriteToStderr || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	var output io.Writer = writers[0]
	if len(writers) > 1 {
		output = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	// Text output for humans at a terminal, JSON for everything else.
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) && cfg.FilePath == "" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	cleanup := func() {
		if file != nil {
			_ = file.Sync()
			_ = file.Close()
		}
	}

	return slog.New(handler), cleanup, nil
}

// ParseLevel converts a level string to a slog.Level.
// Unknown values default to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops all records. Useful in tests and as
// a safe default for optional logger parameters.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
