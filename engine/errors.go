package engine

import (
	"errors"
	"fmt"
)

// Kind identifies one of the failure categories a caller can branch on
type Kind int

const (
	// KindInvalidCredentials is a 401: the API key was rejected
	KindInvalidCredentials Kind = iota + 1
	// KindQuotaExceeded is a 402: the account quota is used up
	KindQuotaExceeded
	// KindRateLimited is a 429
	KindRateLimited
	// KindValidationFailed is a 422: the request payload was rejected
	KindValidationFailed
	// KindServerError is any other status >= 400
	KindServerError
	// KindTimeout is an attempt that did not complete in time
	KindTimeout
	// KindNetworkFailure is a connection or I/O failure below HTTP
	KindNetworkFailure
)

var kindNames = map[Kind]string{
	KindInvalidCredentials: "invalid_credentials",
	KindQuotaExceeded:      "quota_exceeded",
	KindRateLimited:        "rate_limited",
	KindValidationFailed:   "validation_failed",
	KindServerError:        "server_error",
	KindTimeout:            "timeout",
	KindNetworkFailure:     "network_failure",
}

var kindCodes = map[Kind]string{
	KindInvalidCredentials: "INVALID_API_KEY",
	KindQuotaExceeded:      "QUOTA_EXCEEDED",
	KindRateLimited:        "RATE_LIMITED",
	KindValidationFailed:   "VALIDATION_ERROR",
	KindServerError:        "SERVER_ERROR",
	KindTimeout:            "TIMEOUT_ERROR",
	KindNetworkFailure:     "NETWORK_ERROR",
}

// String returns the snake_case name used in logs and metrics
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Code returns the SDK error code for the kind
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "UNKNOWN_ERROR"
}

// Retryable reports whether the retry policy may try again after this kind.
// Caller and configuration errors never change on repetition.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServerError, KindTimeout, KindNetworkFailure:
		return true
	default:
		return false
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrRateLimited        = errors.New("rate limited")
	ErrValidationFailed   = errors.New("validation failed")
	ErrServerError        = errors.New("server error")
	ErrTimeout            = errors.New("timeout")
	ErrNetworkFailure     = errors.New("network failure")

	// ErrCanceled is matched by *CanceledError
	ErrCanceled = errors.New("request canceled")
)

var kindSentinels = map[Kind]error{
	KindInvalidCredentials: ErrInvalidCredentials,
	KindQuotaExceeded:      ErrQuotaExceeded,
	KindRateLimited:        ErrRateLimited,
	KindValidationFailed:   ErrValidationFailed,
	KindServerError:        ErrServerError,
	KindTimeout:            ErrTimeout,
	KindNetworkFailure:     ErrNetworkFailure,
}

// Error is a classified failure. Exactly the fields relevant to Kind are set:
// RetryAfter only for KindRateLimited, Cause only for transport failures.
type Error struct {
	Kind Kind
	// Code is the server-supplied error code, or Kind.Code() when there was none
	Code    string
	Message string
	Details map[string]any
	// StatusCode is the HTTP status, zero for transport failures
	StatusCode int
	// RetryAfter is the server hint in whole seconds
	RetryAfter *int
	Cause      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServerError:
		return fmt.Sprintf("pulsesend: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	case KindRateLimited:
		if e.RetryAfter != nil {
			return fmt.Sprintf("pulsesend: %s (retry after %ds): %s", e.Kind, *e.RetryAfter, e.Message)
		}
	case KindTimeout, KindNetworkFailure:
		if e.Cause != nil {
			return fmt.Sprintf("pulsesend: %s: %s: %v", e.Kind, e.Message, e.Cause)
		}
	}
	return fmt.Sprintf("pulsesend: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the transport cause
func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel of e's kind
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// AsError extracts an *Error from err's chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// CanceledError is returned when the caller's context ends before the
// request engine reaches a terminal state.
type CanceledError struct {
	// Attempts is the number of transport calls already made
	Attempts int
	// Last is the most recent classified error, if any attempt failed
	Last *Error
	Err  error
}

func (e *CanceledError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("pulsesend: request canceled after %d attempt(s): %v (last error: %s)", e.Attempts, e.Err, e.Last.Message)
	}
	return fmt.Sprintf("pulsesend: request canceled after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap returns the context error
func (e *CanceledError) Unwrap() error { return e.Err }

// Is matches ErrCanceled
func (e *CanceledError) Is(target error) bool { return target == ErrCanceled }
