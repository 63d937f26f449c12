package fixtures

import (
	"encoding/json"
	nethttp "net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pulsesend/pulsesend-go/httpclient"
	"github.com/pulsesend/pulsesend-go/testing/mocks"
)

// Response builds a transport response with the given status and body.
func Response(status int, body string) *httpclient.Response {
	return &httpclient.Response{StatusCode: status, Body: []byte(body), Headers: nethttp.Header{}}
}

// Success wraps data in the API success envelope.
func Success(data any) *httpclient.Response {
	raw, err := json.Marshal(map[string]any{"success": true, "data": data})
	if err != nil {
		panic(err)
	}
	return Response(nethttp.StatusOK, string(raw))
}

// APIError builds an error envelope response.
func APIError(status int, code, message string) *httpclient.Response {
	raw, err := json.Marshal(map[string]any{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
	if err != nil {
		panic(err)
	}
	return Response(status, string(raw))
}

// RateLimited builds a 429 response with a Retry-After header in seconds.
func RateLimited(retryAfter int) *httpclient.Response {
	resp := APIError(nethttp.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
	resp.Headers.Set("Retry-After", strconv.Itoa(retryAfter))
	return resp
}

// ConnectFailure is the error a transport returns when the API is unreachable.
func ConnectFailure() error {
	return httpclient.NewConnectError("connection refused", syscall.ECONNREFUSED)
}

// TimeoutFailure is the error a transport returns when an attempt times out.
func TimeoutFailure() error {
	return httpclient.NewTimeoutError("attempt timed out", 10*time.Second, nil)
}

// NewHealthyTransport answers every request with a successful envelope around data.
func NewHealthyTransport(data any) *mocks.MockTransport {
	m := &mocks.MockTransport{}
	m.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(Success(data), nil)
	return m
}

// NewFailingTransport fails every request with err, or a connection failure when err is nil.
func NewFailingTransport(err error) *mocks.MockTransport {
	if err == nil {
		err = ConnectFailure()
	}
	m := &mocks.MockTransport{}
	m.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(nil, err)
	return m
}

// NewFlakyTransport fails the first failures calls with resp, then succeeds with data.
func NewFlakyTransport(failures int, resp *httpclient.Response, data any) *mocks.MockTransport {
	m := &mocks.MockTransport{}
	if failures > 0 {
		m.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(resp, nil).Times(failures)
	}
	m.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(Success(data), nil)
	return m
}
