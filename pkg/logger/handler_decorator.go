package logger

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of every attribute whose key is redacted.
const Redacted = "[REDACTED]"

// DefaultRedactedKeys name attributes that may carry key material.
var DefaultRedactedKeys = []string{"secret", "encryption_key", "master_key"}

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// LogHandlerDecorator adds context attributes to each record and masks the
// values of redacted keys, including keys nested in groups.
type LogHandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
	redacted   map[string]struct{}
}

// NewLogHandlerDecorator wraps next. Nil extractors are skipped; redacted keys
// are matched case-insensitively.
func NewLogHandlerDecorator(next slog.Handler, extractors []ContextExtractor, redacted ...string) *LogHandlerDecorator {
	h := &LogHandlerDecorator{
		next:     next,
		redacted: make(map[string]struct{}, len(redacted)),
	}
	for _, ex := range extractors {
		if ex != nil {
			h.extractors = append(h.extractors, ex)
		}
	}
	for _, k := range redacted {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			h.redacted[k] = struct{}{}
		}
	}
	return h
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	if len(h.redacted) == 0 {
		h.extract(ctx, &rec)
		return h.next.Handle(ctx, rec)
	}

	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	h.extract(ctx, &out)
	return h.next.Handle(ctx, out)
}

func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.redact(a)
	}
	return h.with(h.next.WithAttrs(clean))
}

func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return h.with(h.next.WithGroup(name))
}

func (h *LogHandlerDecorator) with(next slog.Handler) *LogHandlerDecorator {
	return &LogHandlerDecorator{
		next:       next,
		extractors: h.extractors,
		redacted:   h.redacted,
	}
}

func (h *LogHandlerDecorator) extract(ctx context.Context, rec *slog.Record) {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(h.redact(attr))
		}
	}
}

func (h *LogHandlerDecorator) redact(a slog.Attr) slog.Attr {
	if _, ok := h.redacted[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() != slog.KindGroup {
		return a
	}
	group := a.Value.Group()
	clean := make([]slog.Attr, len(group))
	for i, g := range group {
		clean[i] = h.redact(g)
	}
	return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
}
