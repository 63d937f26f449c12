package engine

import (
	"maps"

	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/pulsesend/pulsesend-go/logger"
)

// Option customizes an Engine
type Option func(*options)

type options struct {
	clock          Clock
	logger         logger.Logger
	meterProvider  metric.MeterProvider
	tracerProvider oteltrace.TracerProvider
	headers        map[string]string
}

// WithClock replaces the real clock, mainly for tests
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger used for retry and give-up events
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeterProvider sets the provider for the engine's instruments.
// The global provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithTracerProvider sets the provider for the engine's spans.
// The global provider is used otherwise.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithDefaultHeaders adds headers sent with every request. Per-request
// headers with the same name take precedence.
func WithDefaultHeaders(h map[string]string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(h))
		}
		maps.Copy(o.headers, h)
	}
}
