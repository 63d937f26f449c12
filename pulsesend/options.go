package pulsesend

import (
	nethttp "net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/pulsesend/pulsesend-go/config"
	"github.com/pulsesend/pulsesend-go/engine"
	"github.com/pulsesend/pulsesend-go/httpclient"
	"github.com/pulsesend/pulsesend-go/logger"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL    string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	userAgent  string

	rateLimit          float64
	burst              int
	logPayloads        bool
	maxPayloadLogBytes int
	traceContext       bool

	logger         logger.Logger
	httpClient     *nethttp.Client
	transport      httpclient.Client
	clock          engine.Clock
	meterProvider  metric.MeterProvider
	tracerProvider oteltrace.TracerProvider
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		baseURL:            config.DefaultBaseURL,
		timeout:            config.DefaultTimeout,
		retries:            config.DefaultMaxRetries,
		retryDelay:         config.DefaultRetryDelay,
		userAgent:          defaultUserAgent,
		maxPayloadLogBytes: config.DefaultMaxPayloadLogBytes,
	}
}

// fromConfig turns loaded configuration into options applied before the caller's own
func fromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithBaseURL(cfg.API.BaseURL),
		WithTimeout(cfg.HTTP.Timeout),
		WithRetries(cfg.Retry.Max),
		WithRetryDelay(cfg.Retry.Delay),
		WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.Burst),
		WithPayloadLogging(cfg.HTTP.LogPayloads, cfg.HTTP.MaxPayloadLogBytes),
		WithTraceContext(cfg.HTTP.TraceContext),
		WithLogger(logger.New(cfg.Log.Level, cfg.Log.Pretty)),
	}
	if cfg.HTTP.UserAgent != "" {
		opts = append(opts, WithUserAgent(cfg.HTTP.UserAgent))
	}
	return opts
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets the timeout of each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets how many times a failed request is retried. Zero disables retries.
func WithRetries(n int) Option {
	return func(c *clientConfig) {
		c.retries = n
	}
}

// WithRetryDelay sets the first backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		c.retryDelay = d
	}
}

// WithUserAgent replaces the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger for transport and retry events.
func WithLogger(l logger.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout is left untouched;
// per-attempt timeouts are applied through the request context.
func WithHTTPClient(client *nethttp.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTransport replaces the whole HTTP transport. Timeout, rate limit and
// payload logging options are ignored when it is set.
func WithTransport(t httpclient.Client) Option {
	return func(c *clientConfig) {
		c.transport = t
	}
}

// WithRateLimit throttles outgoing requests on the client side.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *clientConfig) {
		c.rateLimit = perSecond
		c.burst = burst
	}
}

// WithPayloadLogging logs header and body previews at debug level.
func WithPayloadLogging(enabled bool, maxBytes int) Option {
	return func(c *clientConfig) {
		c.logPayloads = enabled
		c.maxPayloadLogBytes = maxBytes
	}
}

// WithTraceContext adds a W3C traceparent header to every request, linked to
// the client span when a tracer provider is recording. Ignored with WithTransport.
func WithTraceContext(enabled bool) Option {
	return func(c *clientConfig) {
		c.traceContext = enabled
	}
}

// WithClock replaces the clock used for retry waits.
func WithClock(clock engine.Clock) Option {
	return func(c *clientConfig) {
		c.clock = clock
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *clientConfig) {
		c.meterProvider = mp
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(c *clientConfig) {
		c.tracerProvider = tp
	}
}
