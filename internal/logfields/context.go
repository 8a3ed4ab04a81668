package logfields

import (
	"context"
	"log/slog"
)

// LogContext holds the attributes carried through a context.
type LogContext struct {
	RunID   string
	Command string
	Step    string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRunID adds a journal run id to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := FromContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithCommand adds the CLI command name to the context.
func WithCommand(ctx context.Context, command string) context.Context {
	lc := FromContext(ctx)
	lc.Command = command
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStep adds a workflow step name to the context.
func WithStep(ctx context.Context, step string) context.Context {
	lc := FromContext(ctx)
	lc.Step = step
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext of ctx, zero when none is set.
func FromContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the non-empty attributes of lc.
func (lc LogContext) Attrs() []slog.Attr {
	var attrs []slog.Attr
	if lc.RunID != "" {
		attrs = append(attrs, RunID(lc.RunID))
	}
	if lc.Command != "" {
		attrs = append(attrs, slog.String(KeyCommand, lc.Command))
	}
	if lc.Step != "" {
		attrs = append(attrs, slog.String(KeyStep, lc.Step))
	}
	return attrs
}

// ContextHandler adds the LogContext of each record's context to the
// record. Only the *Context logging calls carry a context.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps h.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := FromContext(ctx).Attrs(); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
