package httpclient

import (
	nethttp "net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pulsesend/pulsesend-go/logger"
)

// Builder assembles a Client
type Builder struct {
	config     *Config
	logger     logger.Logger
	httpClient *nethttp.Client
}

// NewBuilder creates a builder with a 10s attempt timeout and payload logging off.
// A nil logger discards all output.
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		logger: log,
		config: &Config{
			Timeout:            10 * time.Second,
			DefaultHeaders:     make(map[string]string),
			MaxPayloadLogBytes: defaultMaxPayloadLogBytes,
		},
	}
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithDefaultHeader adds a header sent with every request
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRequestInterceptor appends a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor appends a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithPayloadLogging enables debug logging of headers and body previews.
// maxBytes <= 0 keeps the 1024 byte default.
func (b *Builder) WithPayloadLogging(enabled bool, maxBytes int) *Builder {
	b.config.LogPayloads = enabled
	if maxBytes > 0 {
		b.config.MaxPayloadLogBytes = maxBytes
	}
	return b
}

// WithRequestIDHeader overrides the correlation header name
func (b *Builder) WithRequestIDHeader(header string) *Builder {
	b.config.RequestIDHeader = header
	return b
}

// WithW3CTrace enables traceparent propagation
func (b *Builder) WithW3CTrace(enabled bool) *Builder {
	b.config.EnableW3CTrace = enabled
	return b
}

// WithRateLimit throttles outgoing requests to perSecond with the given burst
func (b *Builder) WithRateLimit(perSecond float64, burst int) *Builder {
	b.config.RateLimit = perSecond
	b.config.Burst = burst
	return b
}

// WithHTTPClient replaces the underlying net/http client. Its Timeout is
// ignored in favour of the per-attempt timeout.
func (b *Builder) WithHTTPClient(httpClient *nethttp.Client) *Builder {
	b.httpClient = httpClient
	return b
}

// Build creates the client
func (b *Builder) Build() Client {
	cfg := *b.config
	cfg.DefaultHeaders = make(map[string]string, len(b.config.DefaultHeaders))
	for k, v := range b.config.DefaultHeaders {
		cfg.DefaultHeaders[k] = v
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &nethttp.Client{}
	}

	c := &client{
		httpClient: httpClient,
		config:     &cfg,
		logger:     b.logger,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c
}
