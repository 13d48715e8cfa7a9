package logger

import (
	"context"
	"errors"
	"log/slog"
)

// Multi returns a logger that writes every record to each of loggers. The
// serve command uses it to pair terminal output with a JSON log file.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	sinks := make([]slog.Handler, 0, len(loggers))
	for _, l := range loggers {
		sinks = append(sinks, l.Handler())
	}
	return slog.New(fanout(sinks))
}

// fanout hands each record to every sink that accepts its level. A failing
// sink does not stop the others; their errors are joined.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) derive(fn func(slog.Handler) slog.Handler) fanout {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = fn(h)
	}
	return next
}
