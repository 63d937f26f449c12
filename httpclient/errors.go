package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// ErrorType identifies the class of a transport failure
type ErrorType string

const (
	// ConnectError means no connection could be established (refused, DNS, unreachable)
	ConnectError ErrorType = "connect"
	// TimeoutError means the attempt did not complete within Config.Timeout
	TimeoutError ErrorType = "timeout"
	// NetworkError covers every other I/O failure
	NetworkError ErrorType = "network"
	// InterceptorError means a request or response interceptor rejected the call
	InterceptorError ErrorType = "interceptor"
	// RequestError means the request could not be built
	RequestError ErrorType = "request"
)

// ClientError is implemented by every error returned from Client.Do
type ClientError interface {
	error
	Type() ErrorType
}

type networkError struct {
	message string
	typ     ErrorType
	err     error
}

// NewNetworkError creates a generic network failure
func NewNetworkError(message string, err error) ClientError {
	return &networkError{message: message, typ: NetworkError, err: err}
}

// NewConnectError creates a connection establishment failure
func NewConnectError(message string, err error) ClientError {
	return &networkError{message: message, typ: ConnectError, err: err}
}

func (e *networkError) Error() string {
	prefix := "network error"
	if e.typ == ConnectError {
		prefix = "connect error"
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

func (e *networkError) Type() ErrorType { return e.typ }

func (e *networkError) Unwrap() error { return e.err }

type timeoutError struct {
	message string
	timeout time.Duration
	err     error
}

// NewTimeoutError creates a per-attempt timeout failure
func NewTimeoutError(message string, timeout time.Duration, err error) ClientError {
	return &timeoutError{message: message, timeout: timeout, err: err}
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType { return TimeoutError }

func (e *timeoutError) Unwrap() error { return e.err }

// Timeout returns the configured attempt timeout
func (e *timeoutError) Timeout() time.Duration { return e.timeout }

type interceptorError struct {
	message string
	stage   string
	err     error
}

// NewInterceptorError creates an interceptor failure for the given stage
func NewInterceptorError(message, stage string, err error) ClientError {
	return &interceptorError{message: message, stage: stage, err: err}
}

func (e *interceptorError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("interceptor error [%s]: %s: %v", e.stage, e.message, e.err)
	}
	return fmt.Sprintf("interceptor error [%s]: %s", e.stage, e.message)
}

func (e *interceptorError) Type() ErrorType { return InterceptorError }

func (e *interceptorError) Unwrap() error { return e.err }

type requestError struct {
	message string
	err     error
}

// NewRequestError creates an error for a request that could not be built
func NewRequestError(message string, err error) ClientError {
	return &requestError{message: message, err: err}
}

func (e *requestError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("request error: %s: %v", e.message, e.err)
	}
	return "request error: " + e.message
}

func (e *requestError) Type() ErrorType { return RequestError }

func (e *requestError) Unwrap() error { return e.err }

// IsErrorType reports whether err is a ClientError of the given type
func IsErrorType(err error, errorType ErrorType) bool {
	var ce ClientError
	if errors.As(err, &ce) {
		return ce.Type() == errorType
	}
	return false
}

// classifyTransportError turns a net/http failure into a ClientError.
// attemptCtx is the per-attempt context carrying the timeout.
func classifyTransportError(attemptCtx context.Context, err error, timeout time.Duration, stage string) ClientError {
	if isTimeout(attemptCtx, err) {
		return NewTimeoutError(stage+" timed out", timeout, err)
	}
	if isConnectFailure(err) {
		return NewConnectError(stage+" failed", err)
	}
	return NewNetworkError(stage+" failed", err)
}

func isTimeout(attemptCtx context.Context, err error) bool {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
