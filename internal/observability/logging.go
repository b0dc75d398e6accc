// Package observability carries per-build logging context (build id, stage,
// source file) through context.Context.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/contentbinder/internal/logfields"
)

// LogContext holds the structured logging context of one build.
type LogContext struct {
	BuildID string
	Stage   string
	File    string
}

type ctxKey struct{}

var logContextKey ctxKey

func with(ctx context.Context, set func(*LogContext)) context.Context {
	lc := GetContext(ctx)
	set(&lc)
	return context.WithValue(ctx, logContextKey, lc)
}

// WithBuildID tags every log line of one Process call.
func WithBuildID(ctx context.Context, id string) context.Context {
	return with(ctx, func(lc *LogContext) { lc.BuildID = id })
}

// WithStage names the build step, such as common or entry_files.
func WithStage(ctx context.Context, stage string) context.Context {
	return with(ctx, func(lc *LogContext) { lc.Stage = stage })
}

func WithFile(ctx context.Context, file string) context.Context {
	return with(ctx, func(lc *LogContext) { lc.File = file })
}

// GetContext returns the LogContext stored in ctx, or a zero value.
func GetContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the non-empty context values as slog attributes.
func Attrs(ctx context.Context) []slog.Attr {
	lc := GetContext(ctx)
	var attrs []slog.Attr
	if lc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}
	if lc.File != "" {
		attrs = append(attrs, logfields.File(lc.File))
	}
	return attrs
}

// Logger returns base (or slog.Default) annotated with the context values.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return base.With(args...)
}
