package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Config holds logging configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	Output string // stdout, stderr or discard
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "json", Output: "stdout"}
}

// Logger wraps slog.Logger with portal-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a structured logger from cfg. Unrecognised values fall back
// to stdout, info and JSON.
func NewLogger(cfg *Config) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	w := outputWriter(cfg.Output)
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func outputWriter(s string) io.Writer {
	switch strings.ToLower(s) {
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stdout
	}
}

// WithComponent tags every entry with the emitting component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// WithContext adds the chi request ID when ctx carries one.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := middleware.GetReqID(ctx); id != "" {
		return &Logger{Logger: l.Logger.With("request_id", id)}
	}
	return l
}

// Portal logs a portal round trip at debug level.
func (l *Logger) Portal(msg string, endpoint string, args ...any) {
	l.Logger.Debug(msg, append([]any{"subsystem", "portal", "endpoint", endpoint}, args...)...)
}

// PortalError logs a portal failure.
func (l *Logger) PortalError(msg string, err error, endpoint string, attrs ...slog.Attr) {
	args := []any{"subsystem", "portal", "endpoint", endpoint}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.Logger.Error(msg, appendAttrs(args, attrs)...)
}

// Performance logs how long an operation took.
func (l *Logger) Performance(operation string, duration time.Duration, attrs ...slog.Attr) {
	args := []any{"operation", operation, "duration_ms", duration.Milliseconds()}
	l.Logger.Info("performance", appendAttrs(args, attrs)...)
}

// Database logs store events at debug level.
func (l *Logger) Database(msg string, args ...any) {
	l.Logger.Debug(msg, append([]any{"subsystem", "database"}, args...)...)
}

// Security logs authentication events.
func (l *Logger) Security(msg string, args ...any) {
	l.Logger.Info(msg, append([]any{"subsystem", "security"}, args...)...)
}

func appendAttrs(args []any, attrs []slog.Attr) []any {
	for _, a := range attrs {
		args = append(args, a)
	}
	return args
}

var defaultLogger *Logger

// SetDefault sets the process-wide logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the process-wide logger, creating one from DefaultConfig if unset.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultConfig())
	}
	return defaultLogger
}
