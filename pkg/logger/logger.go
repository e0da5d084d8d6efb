// Package logger wraps zerolog with the level/format/output settings used across the service.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const serviceName = "hr-portal"

// Logger wraps zerolog logger
type Logger struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// New creates a logger writing to output ("stdout", "stderr" or a file path).
// Format "console" gives human readable lines, anything else JSON.
func New(level, format, output string) (*Logger, error) {
	var writer io.Writer
	switch output {
	case "", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		writer = file
	}

	if format == "console" {
		writer = zerolog.ConsoleWriter{Out: writer}
	}

	return newLogger(writer, parseLevel(level)), nil
}

func newLogger(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{
		logger: zerolog.New(w).Level(level).With().Timestamp().Str("service", serviceName).Logger(),
		level:  level,
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{logger: zerolog.Nop(), level: zerolog.Disabled}
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Level reports the minimum level this logger emits.
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// Debug logs a debug message
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info logs an info message
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn logs a warning message
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error logs an error message
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Component returns a child logger tagged with the given component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", name).Logger(), level: l.level}
}

// Actor returns a child logger carrying the acting user, for request-scoped logs.
func (l *Logger) Actor(id uint, role string) *Logger {
	return &Logger{logger: l.logger.With().Uint("actor_id", id).Str("actor_role", role).Logger(), level: l.level}
}

var global *Logger

// Init initializes the global logger
func Init(level, format, output string) error {
	l, err := New(level, format, output)
	if err != nil {
		return err
	}
	global = l
	return nil
}

// Get returns the global logger instance
func Get() *Logger {
	if global == nil {
		global = newLogger(os.Stdout, zerolog.InfoLevel)
	}
	return global
}
