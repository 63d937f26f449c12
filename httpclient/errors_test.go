package httpclient

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulsesend/pulsesend-go/internal/testutil"
)

// TestErrorTypeFormatting tests the Error() method behavior per error type
func TestErrorTypeFormatting(t *testing.T) {
	tests := []struct {
		name     string
		error    ClientError
		contains []string
	}{
		{
			name:     "network error without wrapped error",
			error:    NewNetworkError("read failed", nil),
			contains: []string{"network error", "read failed"},
		},
		{
			name:     "connect error with wrapped error",
			error:    NewConnectError("dial failed", errors.New(testutil.TestConnectionRefused)),
			contains: []string{"connect error", "dial failed", testutil.TestConnectionRefused},
		},
		{
			name:     "timeout error",
			error:    NewTimeoutError("request timed out", 30*time.Second, nil),
			contains: []string{"timeout error", "request timed out", "30s"},
		},
		{
			name:     "interceptor error",
			error:    NewInterceptorError("processing failed", "request", errors.New("parsing error")),
			contains: []string{"interceptor error", "processing failed", "request", "parsing error"},
		},
		{
			name:     "request error",
			error:    NewRequestError("failed to create request", errors.New("bad url")),
			contains: []string{"request error", "failed to create request", "bad url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, expected := range tt.contains {
				assert.Contains(t, tt.error.Error(), expected)
			}
		})
	}
}

// TestErrorTypeIdentification tests the Type() method for each error type
func TestErrorTypeIdentification(t *testing.T) {
	assert.Equal(t, NetworkError, NewNetworkError("x", nil).Type())
	assert.Equal(t, ConnectError, NewConnectError("x", nil).Type())
	assert.Equal(t, TimeoutError, NewTimeoutError("x", time.Second, nil).Type())
	assert.Equal(t, InterceptorError, NewInterceptorError("x", "request", nil).Type())
	assert.Equal(t, RequestError, NewRequestError("x", nil).Type())
}

func TestErrorUnwrapping(t *testing.T) {
	underlying := errors.New("socket closed")

	netErr := NewNetworkError("connection lost", underlying)
	assert.ErrorIs(t, netErr, underlying)

	var target *networkError
	assert.True(t, errors.As(netErr, &target))
	assert.Equal(t, "connection lost", target.message)

	chained := NewInterceptorError("request processing failed", "request", netErr)
	assert.ErrorIs(t, chained, underlying)
	assert.True(t, IsErrorType(chained, InterceptorError))

	timeoutErr := NewTimeoutError("slow", 2*time.Second, context.DeadlineExceeded)
	assert.ErrorIs(t, timeoutErr, context.DeadlineExceeded)
	assert.Equal(t, 2*time.Second, timeoutErr.(*timeoutError).Timeout())
}

func TestIsErrorType(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		errorType ErrorType
		expected  bool
	}{
		{name: "nil error", err: nil, errorType: NetworkError, expected: false},
		{name: "matching type", err: NewConnectError("x", nil), errorType: ConnectError, expected: true},
		{name: "different type", err: NewConnectError("x", nil), errorType: TimeoutError, expected: false},
		{name: "standard error", err: errors.New("plain"), errorType: NetworkError, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsErrorType(tt.err, tt.errorType))
		})
	}
}

type fakeNetTimeout struct{}

func (fakeNetTimeout) Error() string   { return "i/o timeout" }
func (fakeNetTimeout) Timeout() bool   { return true }
func (fakeNetTimeout) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	live := context.Background()

	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()

	tests := []struct {
		name     string
		ctx      context.Context
		err      error
		expected ErrorType
	}{
		{name: "attempt deadline", ctx: expired, err: errors.New("context deadline exceeded"), expected: TimeoutError},
		{name: "net timeout", ctx: live, err: fakeNetTimeout{}, expected: TimeoutError},
		{name: "dial op error", ctx: live, err: &net.OpError{Op: "dial", Err: errors.New(testutil.TestConnectionRefused)}, expected: ConnectError},
		{name: "dns error", ctx: live, err: &net.DNSError{Err: "no such host", Name: "api.invalid"}, expected: ConnectError},
		{name: "econnrefused", ctx: live, err: syscall.ECONNREFUSED, expected: ConnectError},
		{name: "read op error", ctx: live, err: &net.OpError{Op: "read", Err: errors.New("reset")}, expected: NetworkError},
		{name: "other", ctx: live, err: errors.New("EOF"), expected: NetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := classifyTransportError(tt.ctx, tt.err, time.Second, "request")
			assert.Equal(t, tt.expected, ce.Type())
			assert.ErrorIs(t, ce, tt.err)
		})
	}
}
