package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/pulsesend/pulsesend-go/engine/internal/tracking"
	"github.com/pulsesend/pulsesend-go/httpclient"
	"github.com/pulsesend/pulsesend-go/logger"
	"github.com/pulsesend/pulsesend-go/trace"
)

const (
	logMsgRetry  = "Retrying PulseSend API request"
	logMsgGiveUp = "Giving up on PulseSend API request"
)

var (
	// ErrInvalidConfig is returned by New for an unusable Config
	ErrInvalidConfig = errors.New("invalid engine configuration")
	// ErrInvalidRequest is returned by Execute for a nil or incomplete Request,
	// and wraps transport errors for requests that could not be built or were
	// refused by an interceptor
	ErrInvalidRequest = errors.New("invalid request")
)

// Config is fixed for the lifetime of an Engine
type Config struct {
	// BaseURL is the API root every request path is appended to
	BaseURL string
	// MaxRetries is the number of retries after the first attempt. Zero disables retries.
	MaxRetries int
	// BaseDelay is the first backoff delay; later delays double it
	BaseDelay time.Duration
}

// Request describes one logical API call. Execute never modifies it.
type Request struct {
	Method string
	// Route is the path template used to label metrics, e.g. /emails/{id}.
	// Leave it empty when Path carries no identifiers.
	Route   string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    []byte
}

// Engine executes requests with classification and retries. It holds no
// per-call state and is safe for concurrent use when its transport is.
type Engine struct {
	transport  httpclient.Client
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
	clock      Clock
	logger     logger.Logger
	recorder   *tracking.Recorder
	headers    map[string]string
}

// attemptState is the mutable state of a single Execute call
type attemptState struct {
	attempt int
	waited  time.Duration
	last    *Error
	started time.Time
}

// New validates cfg and builds an Engine around transport.
func New(transport httpclient.Client, cfg Config, opts ...Option) (*Engine, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidConfig)
	}
	baseURL, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	o := &options{
		clock:          RealClock(),
		logger:         logger.Nop(),
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Engine{
		transport:  transport,
		baseURL:    baseURL,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		clock:      o.clock,
		logger:     o.logger,
		recorder:   tracking.NewRecorder(o.meterProvider, o.tracerProvider, o.logger),
		headers:    o.headers,
	}, nil
}

func validateConfig(cfg Config) (string, error) {
	if cfg.MaxRetries < 0 {
		return "", fmt.Errorf("%w: max retries must not be negative, got %d", ErrInvalidConfig, cfg.MaxRetries)
	}
	if cfg.BaseDelay <= 0 {
		return "", fmt.Errorf("%w: base delay must be positive, got %s", ErrInvalidConfig, cfg.BaseDelay)
	}
	if cfg.BaseURL == "" {
		return "", fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base URL: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: base URL must be an absolute http(s) URL, got %q", ErrInvalidConfig, cfg.BaseURL)
	}
	return strings.TrimRight(cfg.BaseURL, "/"), nil
}

// BaseURL returns the normalized API root
func (e *Engine) BaseURL() string { return e.baseURL }

// MaxRetries returns the configured retry budget
func (e *Engine) MaxRetries() int { return e.maxRetries }

// BaseDelay returns the first backoff delay
func (e *Engine) BaseDelay() time.Duration { return e.baseDelay }

// Execute sends req until it succeeds, the retry policy gives up, or ctx is
// done. On success the response body is returned unchanged. On give-up the
// error from the last attempt is returned as an *Error. All attempts of one
// call share the same X-Request-ID.
func (e *Engine) Execute(ctx context.Context, req *Request) ([]byte, error) {
	if req == nil || req.Method == "" {
		return nil, fmt.Errorf("%w: method is required", ErrInvalidRequest)
	}

	ctx = trace.WithRequestID(ctx, trace.EnsureRequestID(ctx))
	ctx, call := e.recorder.Start(ctx, req.Method, req.Route, req.Path)

	hreq := &httpclient.Request{
		URL:     e.buildURL(req),
		Headers: e.mergeHeaders(req.Headers),
		Body:    req.Body,
	}
	state := &attemptState{attempt: 1, started: e.clock.Now()}

	for {
		if err := ctx.Err(); err != nil {
			return nil, e.cancel(ctx, call, state, state.attempt-1, err)
		}

		resp, err := e.transport.Do(ctx, req.Method, hreq)
		if err != nil && ctx.Err() != nil {
			return nil, e.cancel(ctx, call, state, state.attempt, ctx.Err())
		}
		if rejected(err) {
			return nil, e.reject(ctx, call, state, err)
		}

		outcome := OutcomeFrom(resp, err)
		if outcome.IsSuccess() {
			call.Attempt(ctx, state.attempt, outcome.Status, tracking.OutcomeSuccess)
			call.End(ctx, state.attempt, "", nil, e.clock.Now().Sub(state.started))
			return outcome.Body, nil
		}

		classified := Classify(outcome)
		state.last = classified
		call.Attempt(ctx, state.attempt, outcome.Status, classified.Kind.String())

		decision := Decide(classified, state.attempt, e.maxRetries, e.baseDelay)
		if !decision.ShouldRetry() {
			e.logGiveUp(ctx, req, state, classified)
			call.End(ctx, state.attempt, classified.Kind.String(), classified, e.clock.Now().Sub(state.started))
			return nil, classified
		}

		e.logRetry(ctx, req, state, classified, decision.Delay())
		call.Retry(ctx, state.attempt, classified.Kind.String(), decision.Delay())

		if err := e.clock.Sleep(ctx, decision.Delay()); err != nil {
			return nil, e.cancel(ctx, call, state, state.attempt, err)
		}
		state.waited += decision.Delay()
		state.attempt++
	}
}

func (e *Engine) cancel(ctx context.Context, call *tracking.Call, state *attemptState, attempts int, cause error) error {
	canceled := &CanceledError{Attempts: attempts, Last: state.last, Err: cause}
	e.logger.Debug().
		Str("request_id", requestID(ctx)).
		Int("attempts", attempts).
		Err(cause).
		Msg("PulseSend API request canceled")
	call.End(ctx, attempts, tracking.OutcomeCanceled, canceled, e.clock.Now().Sub(state.started))
	return canceled
}

// reject ends a call whose request the transport refused to send. Sending
// the same request again cannot succeed, so no retry is attempted.
func (e *Engine) reject(ctx context.Context, call *tracking.Call, state *attemptState, cause error) error {
	err := fmt.Errorf("%w: %w", ErrInvalidRequest, cause)
	e.logger.Debug().
		Str("request_id", requestID(ctx)).
		Int("attempt", state.attempt).
		Err(cause).
		Msg("PulseSend API request rejected by transport")
	call.Attempt(ctx, state.attempt, 0, tracking.OutcomeInvalidRequest)
	call.End(ctx, state.attempt, tracking.OutcomeInvalidRequest, err, e.clock.Now().Sub(state.started))
	return err
}

func (e *Engine) logRetry(ctx context.Context, req *Request, state *attemptState, err *Error, delay time.Duration) {
	event := e.logger.Warn().
		Str("request_id", requestID(ctx)).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("attempt", state.attempt).
		Int("max_retries", e.maxRetries).
		Str("error_kind", err.Kind.String()).
		Str("error_code", err.Code).
		Dur("delay", delay)
	if err.StatusCode > 0 {
		event = event.Int("status", err.StatusCode)
	}
	event.Msg(logMsgRetry)
}

func (e *Engine) logGiveUp(ctx context.Context, req *Request, state *attemptState, err *Error) {
	e.logger.Debug().
		Str("request_id", requestID(ctx)).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("attempts", state.attempt).
		Dur("waited", state.waited).
		Str("error_kind", err.Kind.String()).
		Bool("retryable", err.Kind.Retryable()).
		Msg(logMsgGiveUp)
}

func (e *Engine) buildURL(req *Request) string {
	var b strings.Builder
	b.WriteString(e.baseURL)
	if req.Path != "" && !strings.HasPrefix(req.Path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(req.Path)
	if len(req.Query) > 0 {
		b.WriteByte('?')
		b.WriteString(req.Query.Encode())
	}
	return b.String()
}

func (e *Engine) mergeHeaders(h map[string]string) map[string]string {
	merged := make(map[string]string, len(e.headers)+len(h))
	maps.Copy(merged, e.headers)
	maps.Copy(merged, h)
	return merged
}

func requestID(ctx context.Context) string {
	id, _ := trace.RequestIDFromContext(ctx)
	return id
}
