// Package testing provides in-memory OpenTelemetry providers and assertions
// for tests of instrumented PulseSend components.
//
// Usage:
//
//	tp := obstest.NewTestTraceProvider()
//	mp := obstest.NewTestMeterProvider()
//	eng, _ := engine.New(transport, cfg,
//	    engine.WithTracerProvider(tp),
//	    engine.WithMeterProvider(mp),
//	)
//	_, _ = eng.Execute(ctx, req)
//
//	obstest.NewSpanCollector(t, tp.Exporter).WithName("pulsesend.execute").AssertCount(1)
//	assert.Equal(t, int64(3), obstest.SumValue(t, mp.Collect(t), "pulsesend.client.attempts"))
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const (
	attrValueMismatchErrMsg = "attribute %s value mismatch"
	metricNotFoundErrMsg    = "metric %s not found"
)

// TestTraceProvider wraps the SDK TracerProvider and an in-memory exporter.
type TestTraceProvider struct {
	*sdktrace.TracerProvider
	Exporter *tracetest.InMemoryExporter
}

// NewTestTraceProvider creates a TracerProvider that exports spans
// synchronously into memory.
func NewTestTraceProvider() *TestTraceProvider {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	return &TestTraceProvider{
		TracerProvider: provider,
		Exporter:       exporter,
	}
}

// TestMeterProvider wraps the SDK MeterProvider and a manual reader.
type TestMeterProvider struct {
	*sdkmetric.MeterProvider
	Reader *sdkmetric.ManualReader
}

// NewTestMeterProvider creates a MeterProvider whose metrics are collected
// on demand with Collect.
func NewTestMeterProvider() *TestMeterProvider {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)

	return &TestMeterProvider{
		MeterProvider: provider,
		Reader:        reader,
	}
}

// Collect reads all metrics recorded so far.
func (tmp *TestMeterProvider) Collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	err := tmp.Reader.Collect(context.Background(), &rm)
	require.NoError(t, err, "failed to collect metrics")
	return rm
}

// SpanCollector filters and asserts on captured spans.
type SpanCollector struct {
	t     *testing.T
	spans tracetest.SpanStubs
}

// NewSpanCollector snapshots the spans held by exporter.
func NewSpanCollector(t *testing.T, exporter *tracetest.InMemoryExporter) *SpanCollector {
	t.Helper()
	return &SpanCollector{
		t:     t,
		spans: exporter.GetSpans(),
	}
}

// Len returns the number of collected spans.
func (sc *SpanCollector) Len() int {
	return len(sc.spans)
}

// WithName filters spans by name.
func (sc *SpanCollector) WithName(name string) *SpanCollector {
	sc.t.Helper()
	filtered := make(tracetest.SpanStubs, 0)
	for i := range sc.spans {
		if sc.spans[i].Name == name {
			filtered = append(filtered, sc.spans[i])
		}
	}
	return &SpanCollector{t: sc.t, spans: filtered}
}

// First returns the first span, failing the test if there is none.
func (sc *SpanCollector) First() tracetest.SpanStub {
	sc.t.Helper()
	require.NotEmpty(sc.t, sc.spans, "no spans in collection")
	return sc.spans[0]
}

// AssertCount asserts the number of collected spans.
func (sc *SpanCollector) AssertCount(expected int) *SpanCollector {
	sc.t.Helper()
	assert.Len(sc.t, sc.spans, expected, "unexpected number of spans")
	return sc
}

// AssertSpanAttribute asserts that a span has key set to expected.
// expected may be a string, int, int64 or bool.
func AssertSpanAttribute(t *testing.T, span *tracetest.SpanStub, key string, expected any) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			assertValue(t, attr.Value, key, expected)
			return
		}
	}
	t.Errorf("attribute %s not found in span", key)
}

func assertValue(t *testing.T, value attribute.Value, key string, expected any) {
	t.Helper()
	switch v := expected.(type) {
	case string:
		assert.Equal(t, v, value.AsString(), attrValueMismatchErrMsg, key)
	case int:
		assert.Equal(t, int64(v), value.AsInt64(), attrValueMismatchErrMsg, key)
	case int64:
		assert.Equal(t, v, value.AsInt64(), attrValueMismatchErrMsg, key)
	case bool:
		assert.Equal(t, v, value.AsBool(), attrValueMismatchErrMsg, key)
	default:
		t.Fatalf("unsupported attribute value type: %T", expected)
	}
}

// AssertSpanStatus asserts the status code of a span.
func AssertSpanStatus(t *testing.T, span *tracetest.SpanStub, expectedCode codes.Code) {
	t.Helper()
	assert.Equal(t, expectedCode, span.Status.Code, "span status code mismatch")
}

// SpanEvents returns the events of span with the given name
func SpanEvents(span *tracetest.SpanStub, name string) []sdktrace.Event {
	var out []sdktrace.Event
	for _, ev := range span.Events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// FindMetric finds a metric by name. Returns nil if not found.
func FindMetric(rm metricdata.ResourceMetrics, metricName string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == metricName {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// SumValue adds up the data points of an int64 counter whose attributes
// include every attribute in match.
func SumValue(t *testing.T, rm metricdata.ResourceMetrics, metricName string, match ...attribute.KeyValue) int64 {
	t.Helper()
	m := FindMetric(rm, metricName)
	require.NotNil(t, m, metricNotFoundErrMsg, metricName)

	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not a Sum[int64]", metricName)

	var total int64
	for _, dp := range data.DataPoints {
		if hasAttributes(dp.Attributes, match) {
			total += dp.Value
		}
	}
	return total
}

// HistogramCount adds up the sample counts of a float64 histogram whose
// attributes include every attribute in match.
func HistogramCount(t *testing.T, rm metricdata.ResourceMetrics, metricName string, match ...attribute.KeyValue) uint64 {
	t.Helper()
	m := FindMetric(rm, metricName)
	require.NotNil(t, m, metricNotFoundErrMsg, metricName)

	data, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "metric %s is not a Histogram[float64]", metricName)

	var total uint64
	for _, dp := range data.DataPoints {
		if hasAttributes(dp.Attributes, match) {
			total += dp.Count
		}
	}
	return total
}

// DataPointCount returns the number of distinct attribute sets recorded for
// a sum or histogram metric.
func DataPointCount(t *testing.T, rm metricdata.ResourceMetrics, metricName string) int {
	t.Helper()
	m := FindMetric(rm, metricName)
	require.NotNil(t, m, metricNotFoundErrMsg, metricName)

	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		return len(data.DataPoints)
	case metricdata.Histogram[float64]:
		return len(data.DataPoints)
	default:
		require.Failf(t, "unsupported metric type", "metric %s has data %T", metricName, m.Data)
		return 0
	}
}

func hasAttributes(set attribute.Set, match []attribute.KeyValue) bool {
	for _, kv := range match {
		v, ok := set.Value(kv.Key)
		if !ok || v.Type() != kv.Value.Type() || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}
