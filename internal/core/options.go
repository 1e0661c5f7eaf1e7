// Package core provides the functional options shared by Interner, Cloner
// and History.
package core

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/comalice/statekeep/internal/primitives"
)

const tracerName = "github.com/comalice/statekeep/internal/core"

// config stores resolved settings after option application. Each component
// reads only the fields that concern it.
type config struct {
	logger    *slog.Logger
	metrics   Metrics
	publisher Publisher
	tracer    trace.Tracer
	now       func() time.Time

	preload [][]primitives.Scalar

	maxCloneEntities int
	interner         *Interner

	maxRestoreAttempts int
	summaryWidth       int
	copier             any
	describer          any
}

// Option mutates component construction configuration.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger:       slog.Default(),
		metrics:      nopMetrics{},
		publisher:    nopPublisher{},
		tracer:       otel.Tracer(tracerName),
		now:          time.Now,
		summaryWidth: primitives.DefaultSummaryWidth,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithConfig applies a validated primitives.Config.
func WithConfig(c primitives.Config) Option {
	return func(cfg *config) {
		cfg.preload = append(cfg.preload, c.Interner.Preload...)
		cfg.maxCloneEntities = c.Clone.MaxEntities
		cfg.maxRestoreAttempts = c.History.MaxRestoreAttempts
		if c.History.SummaryWidth > 0 {
			cfg.summaryWidth = c.History.SummaryWidth
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMetrics configures the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(cfg *config) {
		if m != nil {
			cfg.metrics = m
		}
	}
}

// WithPublisher configures the lifecycle event publisher.
func WithPublisher(p Publisher) Option {
	return func(cfg *config) {
		if p != nil {
			cfg.publisher = p
		}
	}
}

// WithTracerProvider configures the OpenTelemetry tracer provider. The
// global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		if tp != nil {
			cfg.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithClock overrides time.Now for snapshot and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithPreload interns the given field sets when an Interner is constructed.
func WithPreload(sets ...[]primitives.Scalar) Option {
	return func(cfg *config) {
		cfg.preload = append(cfg.preload, sets...)
	}
}

// WithMaxCloneEntities caps the entities a single deep clone may allocate.
// Zero or negative means unbounded.
func WithMaxCloneEntities(n int) Option {
	return func(cfg *config) {
		cfg.maxCloneEntities = max(n, 0)
	}
}

// WithInterner makes the Cloner canonicalize shared state through i.
func WithInterner(i *Interner) Option {
	return func(cfg *config) {
		cfg.interner = i
	}
}

// WithMaxRestoreAttempts caps restore attempts per Undo. Zero or negative
// means unbounded, retrying until a snapshot is accepted or none remain.
func WithMaxRestoreAttempts(n int) Option {
	return func(cfg *config) {
		cfg.maxRestoreAttempts = max(n, 0)
	}
}

// WithSummaryWidth sets how many runes of the state descriptor summaries keep.
func WithSummaryWidth(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.summaryWidth = n
		}
	}
}

// WithCopier sets how History duplicates captured state. The type parameter
// must match the History's state type or the option is ignored.
func WithCopier[S any](c Copier[S]) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.copier = c
		}
	}
}

// WithDescriber sets how History renders a state in summaries. The type
// parameter must match the History's state type or the option is ignored.
func WithDescriber[S any](d func(S) string) Option {
	return func(cfg *config) {
		if d != nil {
			cfg.describer = d
		}
	}
}
