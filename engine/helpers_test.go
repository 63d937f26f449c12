package engine

import (
	"context"
	"maps"
	nethttp "net/http"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulsesend/pulsesend-go/httpclient"
	"github.com/pulsesend/pulsesend-go/internal/testutil"
	"github.com/pulsesend/pulsesend-go/trace"
)

// step is one scripted transport result
type step struct {
	resp *httpclient.Response
	err  error
}

func respond(status int, body string, headers ...string) step {
	h := nethttp.Header{}
	for i := 0; i+1 < len(headers); i += 2 {
		h.Set(headers[i], headers[i+1])
	}
	return step{resp: &httpclient.Response{StatusCode: status, Body: []byte(body), Headers: h}}
}

func connectFailure() step {
	return step{err: httpclient.NewConnectError(testutil.TestConnectionRefused, syscall.ECONNREFUSED)}
}

func timeoutFailure() step {
	return step{err: httpclient.NewTimeoutError("attempt timed out", time.Second, context.DeadlineExceeded)}
}

type sentRequest struct {
	method    string
	url       string
	headers   map[string]string
	body      []byte
	requestID string
}

// scriptedTransport replays steps in order and repeats the last one
type scriptedTransport struct {
	mu    sync.Mutex
	steps []step
	sent  []sentRequest
}

func newScriptedTransport(steps ...step) *scriptedTransport {
	return &scriptedTransport{steps: steps}
}

func (s *scriptedTransport) Do(ctx context.Context, method string, req *httpclient.Request) (*httpclient.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := trace.RequestIDFromContext(ctx)
	s.sent = append(s.sent, sentRequest{
		method:    method,
		url:       req.URL,
		headers:   maps.Clone(req.Headers),
		body:      req.Body,
		requestID: id,
	})

	idx := len(s.sent) - 1
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	return s.steps[idx].resp, s.steps[idx].err
}

func (s *scriptedTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *scriptedTransport) requests() []sentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentRequest(nil), s.sent...)
}

// transportFunc adapts a function to httpclient.Client
type transportFunc func(ctx context.Context, method string, req *httpclient.Request) (*httpclient.Response, error)

func (f transportFunc) Do(ctx context.Context, method string, req *httpclient.Request) (*httpclient.Response, error) {
	return f(ctx, method, req)
}

func newTestEngine(t *testing.T, transport httpclient.Client, maxRetries int, baseDelay time.Duration, opts ...Option) (*Engine, *testutil.FakeClock) {
	clock := testutil.NewFakeClock()
	eng, err := New(transport, Config{
		BaseURL:    testutil.TestBaseURL,
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
	}, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return eng, clock
}

func getRequest(path string) *Request {
	return &Request{Method: nethttp.MethodGet, Path: path}
}
