package pulsesend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/pulsesend/pulsesend-go/config"
	"github.com/pulsesend/pulsesend-go/engine"
	"github.com/pulsesend/pulsesend-go/httpclient"
	"github.com/pulsesend/pulsesend-go/logger"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

const (
	apiKeyPrefix     = "pk_"
	contentTypeJSON  = "application/json"
	defaultUserAgent = "pulsesend-go/" + Version
)

var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrInvalidAPIKey is returned for keys without the pk_ prefix.
	ErrInvalidAPIKey = errors.New(`invalid API key format: API key should start with "pk_"`)

	// ErrUnexpectedResponse is matched by errors for successful HTTP responses
	// whose envelope reports failure or carries no data.
	ErrUnexpectedResponse = errors.New("unexpected API response")

	// ErrMissingID is returned when an operation needs a resource id.
	ErrMissingID = errors.New("id is required")
)

// ResponseError describes an envelope that could not be used.
type ResponseError struct {
	Operation string
	RequestID string
	Code      string
	Message   string
}

func (e *ResponseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pulsesend: %s: %s", e.Operation, e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " [request %s]", e.RequestID)
	}
	return b.String()
}

// Is matches ErrUnexpectedResponse
func (e *ResponseError) Is(target error) bool { return target == ErrUnexpectedResponse }

// Client is the entry point to the PulseSend API. It is safe for concurrent use.
type Client struct {
	engine *engine.Engine
	logger logger.Logger

	Emails    *EmailsService
	Analytics *AnalyticsService
}

// New creates a client for apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if !strings.HasPrefix(apiKey, apiKeyPrefix) {
		return nil, ErrInvalidAPIKey
	}

	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Nop()
	}

	transport := buildTransport(cfg)

	engineOpts := []engine.Option{
		engine.WithLogger(cfg.logger),
		engine.WithDefaultHeaders(map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  contentTypeJSON,
			"Accept":        contentTypeJSON,
			"User-Agent":    cfg.userAgent,
		}),
	}
	if cfg.clock != nil {
		engineOpts = append(engineOpts, engine.WithClock(cfg.clock))
	}
	if cfg.meterProvider != nil {
		engineOpts = append(engineOpts, engine.WithMeterProvider(cfg.meterProvider))
	}
	if cfg.tracerProvider != nil {
		engineOpts = append(engineOpts, engine.WithTracerProvider(cfg.tracerProvider))
	}

	eng, err := engine.New(transport, engine.Config{
		BaseURL:    cfg.baseURL,
		MaxRetries: cfg.retries,
		BaseDelay:  cfg.retryDelay,
	}, engineOpts...)
	if err != nil {
		return nil, err
	}

	c := &Client{engine: eng, logger: cfg.logger}
	c.Emails = &EmailsService{client: c}
	c.Analytics = &AnalyticsService{client: c}
	return c, nil
}

// NewFromConfig creates a client from loaded configuration. Options are
// applied after the configuration and override it.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrMissingAPIKey
	}
	return New(cfg.API.Key, append(fromConfig(cfg), opts...)...)
}

func buildTransport(cfg *clientConfig) httpclient.Client {
	if cfg.transport != nil {
		return cfg.transport
	}
	b := httpclient.NewBuilder(cfg.logger).
		WithTimeout(cfg.timeout).
		WithPayloadLogging(cfg.logPayloads, cfg.maxPayloadLogBytes).
		WithW3CTrace(cfg.traceContext)
	if cfg.rateLimit > 0 {
		b = b.WithRateLimit(cfg.rateLimit, cfg.burst)
	}
	if cfg.httpClient != nil {
		b = b.WithHTTPClient(cfg.httpClient)
	}
	return b.Build()
}

// PingResponse is returned by Ping.
type PingResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Ping checks connectivity and credentials.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	var out PingResponse
	if err := c.call(ctx, "ping", &engine.Request{Method: nethttp.MethodGet, Path: "/ping"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// envelope is the success wrapper around every API payload
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call executes one API operation. in is encoded as the JSON body when non-nil.
// out receives the envelope's data; when out is nil the data may be absent.
func (c *Client) call(ctx context.Context, op string, req *engine.Request, in, out any) error {
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("pulsesend: %s: encode request: %w", op, err)
		}
		req.Body = bytes.TrimRight(buf.Bytes(), "\n")
	}

	raw, err := c.engine.Execute(ctx, req)
	if err != nil {
		return err
	}
	return decodeEnvelope(op, raw, out)
}

func decodeEnvelope(op string, raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &ResponseError{Operation: op, Message: "malformed response body: " + err.Error()}
	}

	if !env.Success {
		rerr := &ResponseError{Operation: op, RequestID: env.RequestID, Message: "request was not successful"}
		if env.Error != nil {
			rerr.Code = env.Error.Code
			if env.Error.Message != "" {
				rerr.Message = env.Error.Message
			}
		}
		return rerr
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return &ResponseError{Operation: op, RequestID: env.RequestID, Message: "response carried no data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ResponseError{Operation: op, RequestID: env.RequestID, Message: "malformed response data: " + err.Error()}
	}
	return nil
}
