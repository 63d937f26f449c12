package httpclient

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/pulsesend/pulsesend-go/logger"
	"github.com/pulsesend/pulsesend-go/trace"
)

// client implements Client on top of net/http
type client struct {
	httpClient *nethttp.Client
	config     *Config
	logger     logger.Logger
	limiter    *rate.Limiter
	callCount  atomic.Int64
}

var _ Client = (*client)(nil)

// Do sends one request. A non-nil Response is returned for every HTTP status;
// the error is non-nil only for failures below HTTP (connect, timeout, I/O,
// interceptors).
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if req == nil {
		return nil, NewRequestError("request is nil", nil)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, NewNetworkError("throttle wait aborted", err)
		}
	}

	attemptCtx := ctx
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	httpReq, err := c.buildRequest(attemptCtx, method, req)
	if err != nil {
		return nil, err
	}

	requestID := httpReq.Header.Get(c.requestIDHeader())
	c.logRequest(httpReq, req.Body, requestID)

	callCount := c.callCount.Add(1)
	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		ce := classifyTransportError(attemptCtx, err, c.config.Timeout, "request")
		c.logFailure(httpReq, requestID, ce, time.Since(start))
		return nil, ce
	}
	defer httpResp.Body.Close()

	for _, interceptor := range c.config.ResponseInterceptors {
		if err := interceptor(attemptCtx, httpReq, httpResp); err != nil {
			return nil, NewInterceptorError("response interceptor failed", "response", err)
		}
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		ce := classifyTransportError(attemptCtx, err, c.config.Timeout, "reading response body")
		c.logFailure(httpReq, requestID, ce, time.Since(start))
		return nil, ce
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
		Stats: Stats{
			ElapsedTime: time.Since(start),
			CallCount:   callCount,
		},
	}
	c.logResponse(response, requestID)

	return response, nil
}

func (c *client) buildRequest(ctx context.Context, method string, req *Request) (*nethttp.Request, error) {
	var body io.Reader = nethttp.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, NewRequestError("failed to create request", err)
	}

	for k, v := range c.config.DefaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	header := c.requestIDHeader()
	if httpReq.Header.Get(header) == "" {
		httpReq.Header.Set(header, trace.EnsureRequestID(ctx))
	}

	if c.config.EnableW3CTrace && httpReq.Header.Get(HeaderTraceParent) == "" {
		setTraceParent(ctx, httpReq.Header)
	}

	for _, interceptor := range c.config.RequestInterceptors {
		if err := interceptor(ctx, httpReq); err != nil {
			return nil, NewInterceptorError("request interceptor failed", "request", err)
		}
	}

	return httpReq, nil
}

// setTraceParent prefers the active span so the outbound call joins its trace,
// then a traceparent stored on ctx, then a freshly generated one.
func setTraceParent(ctx context.Context, h nethttp.Header) {
	if oteltrace.SpanContextFromContext(ctx).IsValid() {
		propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(h))
		return
	}
	if tp, ok := trace.TraceParentFromContext(ctx); ok {
		h.Set(HeaderTraceParent, tp)
		return
	}
	h.Set(HeaderTraceParent, trace.GenerateTraceParent())
}

func (c *client) requestIDHeader() string {
	if c.config.RequestIDHeader != "" {
		return c.config.RequestIDHeader
	}
	return HeaderXRequestID
}
