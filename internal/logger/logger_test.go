package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestContextRequestLoggerFallback(t *testing.T) {
	if ContextRequestLogger(context.Background()) == nil {
		t.Error("ContextRequestLogger() returned nil for a bare context")
	}
}

func TestContextLogAttrs(t *testing.T) {
	base := slog.New(slog.DiscardHandler)
	ctx := ContextWithRequestLogger(context.Background(), base)

	if got := ContextRequestLogger(ctx); got != base {
		t.Error("ContextRequestLogger() did not return the installed logger")
	}

	ContextWithLogAttrs(ctx, slog.String("a", "1"))
	ContextWithLogAttrs(ctx, slog.String("b", "2"))

	attrs := LogAttrsFromContext(ctx)
	if len(attrs) != 2 {
		t.Fatalf("LogAttrsFromContext() returned %d attrs, want 2", len(attrs))
	}
	if attrs[0].Key != "a" || attrs[1].Key != "b" {
		t.Errorf("unexpected attrs: %v", attrs)
	}
}

func TestContextWithLogAttrsNoAccumulator(t *testing.T) {
	// must not panic on a context without the accumulator
	ContextWithLogAttrs(context.Background(), slog.String("a", "1"))

	if attrs := LogAttrsFromContext(context.Background()); attrs != nil {
		t.Errorf("LogAttrsFromContext() = %v, want nil", attrs)
	}
}
