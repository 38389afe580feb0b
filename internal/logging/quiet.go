package logging

import (
	"context"
	"log/slog"
)

type quietKey struct{}

// WithQuiet marks ctx so that informational records logged with it are
// dropped. Warnings and errors still pass through.
func WithQuiet(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, quietKey{}, true)
}

// IsQuiet reports whether ctx was marked by WithQuiet.
func IsQuiet(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	quiet, _ := ctx.Value(quietKey{}).(bool)
	return quiet
}

type quietHandler struct {
	next slog.Handler
}

func newQuietHandler(next slog.Handler) slog.Handler {
	return quietHandler{next: next}
}

func (h quietHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < slog.LevelWarn && IsQuiet(ctx) {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h quietHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < slog.LevelWarn && IsQuiet(ctx) {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h quietHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return quietHandler{next: h.next.WithAttrs(attrs)}
}

func (h quietHandler) WithGroup(name string) slog.Handler {
	return quietHandler{next: h.next.WithGroup(name)}
}
