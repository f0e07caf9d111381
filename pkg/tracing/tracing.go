// Package tracing provides an OpenTelemetry reactor.Observer that emits
// one span per propagation pass.
//
//	root := reactor.NewRoot(
//	    reactor.WithObserver(tracing.NewObserver()),
//	)
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/pkg/reactor"
)

// Default tracer name for reactor instrumentation.
const defaultTracerName = "reactor"

// Config configures the observer.
type Config struct {
	// TracerName is the name of the tracer (default: "reactor").
	TracerName string

	// SpanName is the name given to each pass span
	// (default: "reactor.propagate").
	SpanName string

	// Context is the base context for spans; spans become children of
	// any span already active in it. Defaults to context.Background().
	Context context.Context

	// TracerProvider supplies the tracer. Defaults to the global
	// provider.
	TracerProvider trace.TracerProvider
}

// Option configures the observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithSpanName sets the per-pass span name.
func WithSpanName(name string) Option {
	return func(c *Config) {
		c.SpanName = name
	}
}

// WithContext sets the base context for pass spans.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// Observer emits one span per outermost propagation pass, annotated with
// the pass's memo recompute and effect run counts.
//
// Observer callbacks run on the Root's thread; like the Root itself, an
// Observer instance must not be shared across Roots.
type Observer struct {
	tracer   trace.Tracer
	ctx      context.Context
	spanName string

	// span stack: passes triggered from effect bodies nest.
	spans []trace.Span
}

// NewObserver returns a pass-tracing observer.
func NewObserver(opts ...Option) *Observer {
	config := Config{
		TracerName: defaultTracerName,
		SpanName:   "reactor.propagate",
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return &Observer{
		tracer:   tracer,
		ctx:      config.Context,
		spanName: config.SpanName,
	}
}

// PassStarted implements reactor.Observer.
func (o *Observer) PassStarted() {
	_, span := o.tracer.Start(o.ctx, o.spanName)
	o.spans = append(o.spans, span)
}

// PassFinished implements reactor.Observer.
func (o *Observer) PassFinished(stats reactor.PassStats) {
	if len(o.spans) == 0 {
		return
	}
	span := o.spans[len(o.spans)-1]
	o.spans = o.spans[:len(o.spans)-1]

	span.SetAttributes(
		attribute.Int64("reactor.memo_recomputes", int64(stats.MemoRecomputes)),
		attribute.Int64("reactor.effect_runs", int64(stats.EffectRuns)),
	)
	span.End()
}

var _ reactor.Observer = (*Observer)(nil)
