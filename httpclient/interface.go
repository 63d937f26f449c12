// Package httpclient is the HTTP transport underneath the PulseSend request
// engine. It sends exactly one request per call and returns the response for
// every HTTP status code; deciding what a 4xx or 5xx means is left to the
// caller. Low-level failures are reported as ClientError values.
package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/pulsesend/pulsesend-go/trace"
)

const (
	// HeaderXRequestID is the default header used for request correlation
	HeaderXRequestID = trace.HeaderXRequestID
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = trace.HeaderTraceParent

	defaultMaxPayloadLogBytes = 1024
)

// Client sends a single HTTP request. Implementations must be safe for
// concurrent use.
type Client interface {
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request is the transport-level request: a fully built URL plus headers and body.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is returned for any status code the server answered with.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response headers
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the transport configuration
type Config struct {
	// Timeout bounds a single attempt, including reading the body
	Timeout              time.Duration
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	DefaultHeaders       map[string]string
	// LogPayloads enables debug-level logging of headers and body previews
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// RequestIDHeader is the header carrying the correlation id (default: X-Request-ID)
	RequestIDHeader string
	// EnableW3CTrace adds a traceparent header when the request has none
	EnableW3CTrace bool
	// RateLimit throttles outgoing requests per second; zero disables it
	RateLimit float64
	// Burst is the throttle bucket size (default 1 when RateLimit is set)
	Burst int
}
