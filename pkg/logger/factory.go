package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
)

// Format selects the slog handler New builds.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Environment names accepted by WithEnvironment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
	redacted   []string
}

// Option configures New.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat panics on anything but FormatJSON or FormatText: a wrong format is
// a wiring bug, not a runtime condition.
func WithFormat(f Format) Option {
	if f != FormatJSON && f != FormatText {
		panic(fmt.Errorf("logger: unknown format %q", f))
	}
	return func(c *config) { c.format = f }
}

// WithOutput ignores a nil writer.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// WithComponent tags every record with the component name.
func WithComponent(name string) Option {
	return func(c *config) {
		if name != "" {
			c.attrs = append(c.attrs, Component(name))
		}
	}
}

// WithContextExtractors skips nil extractors.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithContextValue logs ctx.Value(key) under name whenever it is set.
func WithContextValue(name string, key any) Option {
	if name == "" || key == nil {
		return func(*config) {}
	}
	return WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
		v := ctx.Value(key)
		if v == nil {
			return slog.Attr{}, false
		}
		return slog.Any(name, v), true
	})
}

// WithRedactedKeys masks additional attribute keys on top of DefaultRedactedKeys.
func WithRedactedKeys(keys ...string) Option {
	return func(c *config) {
		c.redacted = append(slices.Clone(c.redacted), keys...)
	}
}

// WithEnvironment applies the preset for env: JSON at INFO for "production"
// (or "prod"), text at DEBUG for anything else. The service and env names are
// attached to every record; an empty service leaves the config untouched.
func WithEnvironment(env, service string) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		name := EnvDevelopment
		c.level, c.format = slog.LevelDebug, FormatText
		if env == EnvProduction || env == "prod" {
			name = EnvProduction
			c.level, c.format = slog.LevelInfo, FormatJSON
		}
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", name))
	}
}

// Discard returns a logger that drops every record. Packages use it when the
// caller did not supply a logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// New builds a logger writing JSON at INFO to stderr unless options say
// otherwise. Stdout is left to command output.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:    slog.LevelInfo,
		format:   FormatJSON,
		output:   os.Stderr,
		redacted: DefaultRedactedKeys,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var handler slog.Handler
	hopts := &slog.HandlerOptions{Level: cfg.level}
	switch cfg.format {
	case FormatText:
		handler = slog.NewTextHandler(cfg.output, hopts)
	default:
		handler = slog.NewJSONHandler(cfg.output, hopts)
	}
	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}
	return slog.New(NewLogHandlerDecorator(handler, cfg.extractors, cfg.redacted...))
}
