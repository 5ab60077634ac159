// Package logger configures the application's structured logging and
// provides the per-request logger plumbing used by the HTTP middleware
// and handlers.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLogLevel converts a configuration string to a slog level.
// Unrecognized values fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// InitLogger creates the application logger and installs it as the slog
// default.
//
// The dev environment gets colorized human-readable output (tint);
// everything else gets JSON for log aggregation.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	var handler slog.Handler

	if environment == "dev" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

type contextKey int

const (
	requestLoggerKey contextKey = iota
	logAttrsKey
)

// logAttrs accumulates attributes attached by handlers and middleware
// over the lifetime of one request, for inclusion in the final request
// log line.
type logAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithRequestLogger returns a context carrying the per-request
// logger plus an empty attribute accumulator. The request-logging
// middleware installs this at the start of each request.
func ContextWithRequestLogger(ctx context.Context, l *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, requestLoggerKey, l)
	return context.WithValue(ctx, logAttrsKey, &logAttrs{})
}

// ContextRequestLogger returns the per-request logger from the context,
// or the default logger when none was installed (e.g. in tests or CLI
// code paths).
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// ContextWithLogAttrs appends attributes to the request's accumulator so
// they appear in the final request log line. A no-op when the context has
// no accumulator.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	acc, ok := ctx.Value(logAttrsKey).(*logAttrs)
	if !ok {
		return
	}
	acc.mu.Lock()
	acc.attrs = append(acc.attrs, attrs...)
	acc.mu.Unlock()
}

// LogAttrsFromContext returns the attributes accumulated during the
// request.
func LogAttrsFromContext(ctx context.Context) []slog.Attr {
	acc, ok := ctx.Value(logAttrsKey).(*logAttrs)
	if !ok {
		return nil
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return append([]slog.Attr(nil), acc.attrs...)
}
