// Package logging builds the process-wide zerolog logger: human-readable
// console output plus an append-only log file in the platform state
// directory.
package logging

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the default log level (debug, info, warn, error).
const EnvLogLevel = "DICTATION_LOG_LEVEL"

// New creates a zerolog logger writing to stderr and the log file.
// A file that cannot be opened degrades to console-only logging; a CLI
// must never refuse to run because its log file is unwritable.
func New() zerolog.Logger {
	level := parseLevel(os.Getenv(EnvLogLevel))
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	path := logPath(runtime.GOOS, os.Getenv)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return zerolog.New(console).Level(level).With().Timestamp().Logger()
	}
	// #nosec G304 -- log path is constructed from the platform state dir
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.New(console).Level(level).With().Timestamp().Logger()
	}

	multi := zerolog.MultiLevelWriter(console, logFile)
	return zerolog.New(multi).Level(level).With().Timestamp().Logger()
}

// parseLevel maps the env value to a zerolog level, defaulting to info.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// logPath returns the platform-specific log file path.
func logPath(goos string, getenv func(string) string) string {
	var base string

	switch goos {
	case "darwin":
		base = filepath.Join(getenv("HOME"), "Library", "Logs")
	case "windows":
		base = getenv("LOCALAPPDATA")
	default:
		if xdg := getenv("XDG_STATE_HOME"); xdg != "" {
			base = xdg
		} else {
			base = filepath.Join(getenv("HOME"), ".local", "state")
		}
	}

	return filepath.Join(base, "go-dictation", "go-dictation.log")
}
