package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with the service and host attached to every record
type Logger struct {
	*slog.Logger
}

var defaultLogger = New("flavour-api", "info", os.Stdout)

// New creates a JSON logger for the given service at the given level
func New(service, level string, out io.Writer) *Logger {
	hostname, _ := os.Hostname()

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	})

	return &Logger{
		Logger: slog.New(handler).With(
			slog.String("service", service),
			slog.String("hostname", hostname),
		),
	}
}

// Default returns the process-wide logger
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Info logs an action at info level
func (l *Logger) Info(action, message string, attrs ...any) {
	l.Logger.Info(message, append([]any{slog.String("action", action)}, attrs...)...)
}

// Warn logs an action at warn level
func (l *Logger) Warn(action, message string, attrs ...any) {
	l.Logger.Warn(message, append([]any{slog.String("action", action)}, attrs...)...)
}

// Error logs a failed action together with its error
func (l *Logger) Error(action, message string, err error, attrs ...any) {
	args := []any{slog.String("action", action)}
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.Logger.Error(message, append(args, attrs...)...)
}

// With returns a logger carrying extra attributes
func (l *Logger) With(attrs ...any) *Logger {
	return &Logger{Logger: l.Logger.With(attrs...)}
}

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
