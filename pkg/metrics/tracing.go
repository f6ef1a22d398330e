package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// Default tracer name for asyncvalue stores.
const defaultTracerName = "asyncvalue"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "asyncvalue").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// Filter determines which dispatches are traced.
	// If nil, every dispatch is traced.
	Filter func(a api.Action) bool
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.TracerProvider = tp
	}
}

// WithActionFilter sets a filter for dispatch spans.
func WithActionFilter(filter func(a api.Action) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// TracingObserver emits one span per dispatch, persist and rehydrate.
// Dispatch spans are back-dated by the reported duration.
type TracingObserver struct {
	tracer trace.Tracer
	filter func(a api.Action) bool
}

var _ api.Observer = (*TracingObserver)(nil)

// NewTracingObserver creates a TracingObserver.
func NewTracingObserver(opts ...TracingOption) *TracingObserver {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}

	return &TracingObserver{
		tracer: config.TracerProvider.Tracer(config.TracerName),
		filter: config.Filter,
	}
}

func (o *TracingObserver) OnDispatch(ctx context.Context, store string, a api.Action, changed bool, d time.Duration) {
	if o.filter != nil && !o.filter(a) {
		return
	}

	end := time.Now()
	_, span := o.tracer.Start(ctx, "asyncvalue.dispatch",
		trace.WithTimestamp(end.Add(-d)),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("asyncvalue.store", store),
			attribute.String("asyncvalue.action_type", a.Type),
			attribute.Bool("asyncvalue.action_error", a.Error),
			attribute.Bool("asyncvalue.changed", changed),
		),
	)
	span.End(trace.WithTimestamp(end))
}

func (o *TracingObserver) OnPersist(ctx context.Context, key string, err error) {
	_, span := o.tracer.Start(ctx, "asyncvalue.persist",
		trace.WithAttributes(attribute.String("asyncvalue.key", key)),
	)
	endWithError(span, err)
}

func (o *TracingObserver) OnRehydrate(ctx context.Context, key string, restored bool, err error) {
	_, span := o.tracer.Start(ctx, "asyncvalue.rehydrate",
		trace.WithAttributes(
			attribute.String("asyncvalue.key", key),
			attribute.Bool("asyncvalue.restored", restored),
		),
	)
	endWithError(span, err)
}

func endWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
