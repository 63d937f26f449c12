package observability

import (
	"maps"
	"strings"
	"time"
)

const (
	// EndpointStdout prints telemetry to the configured writer (stdout by default).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// DefaultServiceName is reported when no service name is configured.
	DefaultServiceName = "pulsesend-go"

	// DefaultMetricsInterval is the export period of the metric reader.
	DefaultMetricsInterval = 10 * time.Second
)

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Config selects where SDK telemetry goes. It is loaded by the config
// package under the "observability" key.
type Config struct {
	// Enabled turns on exporting. When false the provider is a no-op.
	Enabled bool          `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Service ServiceConfig `koanf:"service" json:"service" yaml:"service"`
	Trace   TraceConfig   `koanf:"trace" json:"trace" yaml:"trace"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// ServiceConfig identifies the application in exported resources.
type ServiceConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name"`
	Version string `koanf:"version" json:"version" yaml:"version"`
}

// TraceConfig configures span export.
type TraceConfig struct {
	// Enabled: nil means "on when observability is enabled"
	Enabled *bool `koanf:"enabled" json:"enabled" yaml:"enabled"`

	// Endpoint is "stdout", an http(s) URL for the HTTP protocol, or host:port for gRPC
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Protocol string `koanf:"protocol" json:"protocol" yaml:"protocol"`
	Insecure bool   `koanf:"insecure" json:"insecure" yaml:"insecure"`

	// Headers are sent with every OTLP export, typically for authentication
	Headers map[string]string `koanf:"headers" json:"-" yaml:"headers"`

	// SampleRate is the fraction of traces kept, 0.0 to 1.0. nil means 1.0.
	SampleRate *float64 `koanf:"samplerate" json:"samplerate" yaml:"samplerate"`
}

// MetricsConfig configures metric export. Protocol, TLS and headers are
// shared with TraceConfig.
type MetricsConfig struct {
	Enabled  *bool         `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Endpoint string        `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = DefaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}

	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Enabled && c.Trace.Enabled == nil {
		c.Trace.Enabled = BoolPtr(true)
	}
	if c.Trace.SampleRate == nil {
		c.Trace.SampleRate = Float64Ptr(1.0)
	}
	if c.Trace.Headers != nil {
		c.Trace.Headers = maps.Clone(c.Trace.Headers)
	}

	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = EndpointStdout
	}
	if c.Enabled && c.Metrics.Enabled == nil {
		c.Metrics.Enabled = BoolPtr(true)
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = DefaultMetricsInterval
	}
}

// Validate checks a defaulted configuration.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !c.Enabled {
		return nil
	}
	if c.Service.Name == "" {
		return ErrMissingServiceName
	}
	if c.Trace.SampleRate != nil && (*c.Trace.SampleRate < 0 || *c.Trace.SampleRate > 1) {
		return ErrInvalidSampleRate
	}
	if c.Trace.Protocol != ProtocolHTTP && c.Trace.Protocol != ProtocolGRPC {
		return ErrInvalidProtocol
	}
	if isOn(c.Trace.Enabled) {
		if err := validateEndpoint(c.Trace.Endpoint, c.Trace.Protocol); err != nil {
			return err
		}
	}
	if isOn(c.Metrics.Enabled) {
		if err := validateEndpoint(c.Metrics.Endpoint, c.Trace.Protocol); err != nil {
			return err
		}
	}
	return nil
}

// validateEndpoint requires a scheme for HTTP and forbids one for gRPC
func validateEndpoint(endpoint, protocol string) error {
	if endpoint == EndpointStdout {
		return nil
	}
	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
	if protocol == ProtocolHTTP && !hasScheme {
		return ErrInvalidEndpointFormat
	}
	if protocol == ProtocolGRPC && hasScheme {
		return ErrInvalidEndpointFormat
	}
	return nil
}

func isOn(b *bool) bool {
	return b != nil && *b
}
