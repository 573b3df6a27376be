package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler is a slog.Handler whose sink can be replaced at runtime.
// Handlers derived through WithAttrs and WithGroup share the root sink, so
// loggers created before a Swap follow it.
type SwappableHandler struct {
	root *atomic.Pointer[slog.Handler]
	// derive replays the WithAttrs/WithGroup chain onto the current sink.
	derive []func(slog.Handler) slog.Handler
}

// NewSwappableHandler creates a handler that writes to initial.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	root := &atomic.Pointer[slog.Handler]{}
	root.Store(&initial)
	return &SwappableHandler{root: root}
}

// Swap atomically replaces the sink for this handler and every handler derived from it.
func (sh *SwappableHandler) Swap(next slog.Handler) {
	sh.root.Store(&next)
}

func (sh *SwappableHandler) current() slog.Handler {
	h := *sh.root.Load()
	for _, fn := range sh.derive {
		h = fn(h)
	}
	return h
}

// Enabled reports whether the current sink handles records at the given level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

// Handle passes r to the current sink.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a handler that adds attrs to every record and still follows Swap.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return sh
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a handler that nests attributes under name and still follows Swap.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return sh
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) with(fn func(slog.Handler) slog.Handler) *SwappableHandler {
	derive := make([]func(slog.Handler) slog.Handler, len(sh.derive), len(sh.derive)+1)
	copy(derive, sh.derive)
	return &SwappableHandler{root: sh.root, derive: append(derive, fn)}
}
