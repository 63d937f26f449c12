// Package tracking records OpenTelemetry spans and metrics for engine calls.
package tracking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/pulsesend/pulsesend-go/logger"
)

const (
	// Instrumentation scope for both the meter and the tracer
	ScopeName = "github.com/pulsesend/pulsesend-go/engine"

	SpanName = "pulsesend.execute"

	MetricAttempts = "pulsesend.client.attempts"
	MetricRetries  = "pulsesend.client.retries"
	MetricDuration = "pulsesend.client.request.duration"

	AttrOutcome  = "pulsesend.outcome"
	AttrAttempts = "pulsesend.attempts"
	AttrAttempt  = "pulsesend.attempt"
	AttrDelay    = "pulsesend.retry.delay_ms"

	// OutcomeSuccess labels attempts and calls that ended with a 2xx/3xx response
	OutcomeSuccess        = "success"
	OutcomeCanceled       = "canceled"
	OutcomeInvalidRequest = "invalid_request"

	eventAttempt = "attempt"
	eventRetry   = "retry"
)

// Recorder owns the instruments for one engine. Instruments that fail to
// initialize are left nil and skipped.
type Recorder struct {
	tracer   trace.Tracer
	attempts metric.Int64Counter
	retries  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRecorder builds the instruments from the given providers.
func NewRecorder(mp metric.MeterProvider, tp trace.TracerProvider, log logger.Logger) *Recorder {
	meter := mp.Meter(ScopeName)
	r := &Recorder{tracer: tp.Tracer(ScopeName)}

	var err error
	r.attempts, err = meter.Int64Counter(
		MetricAttempts,
		metric.WithDescription("Transport calls made by the PulseSend request engine"),
	)
	logMetricError(log, MetricAttempts, err)

	r.retries, err = meter.Int64Counter(
		MetricRetries,
		metric.WithDescription("Retries scheduled by the PulseSend retry policy"),
	)
	logMetricError(log, MetricRetries, err)

	r.duration, err = meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Duration of PulseSend API calls including retries in milliseconds"),
		metric.WithUnit("ms"),
	)
	logMetricError(log, MetricDuration, err)

	return r
}

func logMetricError(log logger.Logger, name string, err error) {
	if err != nil && log != nil {
		log.Warn().Err(err).Str("metric", name).Msg("Failed to initialize metric")
	}
}

// Call tracks a single Execute invocation
type Call struct {
	rec    *Recorder
	span   trace.Span
	common []attribute.KeyValue
}

// Start opens the span for one call and returns the context carrying it.
// Metrics are labelled with route, a template such as /emails/{id}; the
// concrete path only goes on the span. An empty route falls back to path.
func (r *Recorder) Start(ctx context.Context, method, route, path string) (context.Context, *Call) {
	if route == "" {
		route = path
	}
	common := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(method),
		semconv.HTTPRoute(route),
	}
	ctx, span := r.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(common...),
		trace.WithAttributes(semconv.URLPath(path)),
	)
	return ctx, &Call{rec: r, span: span, common: common}
}

// Attempt records one transport call. outcome is OutcomeSuccess or an error kind.
func (c *Call) Attempt(ctx context.Context, attempt, status int, outcome string) {
	attrs := c.with(attribute.String(AttrOutcome, outcome))
	if c.rec.attempts != nil {
		c.rec.attempts.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	event := []attribute.KeyValue{
		attribute.Int(AttrAttempt, attempt),
		attribute.String(AttrOutcome, outcome),
	}
	if status > 0 {
		event = append(event, semconv.HTTPResponseStatusCode(status))
	}
	c.span.AddEvent(eventAttempt, trace.WithAttributes(event...))
}

// Retry records a scheduled retry after a failed attempt
func (c *Call) Retry(ctx context.Context, attempt int, kind string, delay time.Duration) {
	if c.rec.retries != nil {
		c.rec.retries.Add(ctx, 1, metric.WithAttributes(c.with(semconv.ErrorTypeKey.String(kind))...))
	}
	c.span.AddEvent(eventRetry, trace.WithAttributes(
		attribute.Int(AttrAttempt, attempt),
		semconv.ErrorTypeKey.String(kind),
		attribute.Int64(AttrDelay, delay.Milliseconds()),
	))
}

// End closes the span and records the call duration. kind is empty on success.
func (c *Call) End(ctx context.Context, attempts int, kind string, err error, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = kind
	}

	if c.rec.duration != nil {
		ms := float64(elapsed.Nanoseconds()) / 1e6
		c.rec.duration.Record(ctx, ms, metric.WithAttributes(c.with(attribute.String(AttrOutcome, outcome))...))
	}

	c.span.SetAttributes(attribute.Int(AttrAttempts, attempts), attribute.String(AttrOutcome, outcome))
	if err != nil {
		c.span.SetAttributes(semconv.ErrorTypeKey.String(kind))
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	}
	c.span.End()
}

func (c *Call) with(extra ...attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(c.common)+len(extra))
	attrs = append(attrs, c.common...)
	return append(attrs, extra...)
}
