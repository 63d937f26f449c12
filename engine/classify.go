package engine

import (
	"encoding/json"
	"errors"
	nethttp "net/http"
	"strconv"
	"strings"
)

// FallbackMessage is used when a failed response carries no readable error envelope
const FallbackMessage = "An unknown error occurred"

const (
	msgConnectFailed = "could not connect to the PulseSend API"
	msgTimedOut      = "request to the PulseSend API timed out"
	msgTransport     = "request to the PulseSend API failed"
)

var errNilResponse = errors.New("transport returned neither a response nor an error")

type errorEnvelope struct {
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// Classify maps a non-success outcome to a typed error. It returns nil for
// responses with a status below 400.
func Classify(o Outcome) *Error {
	switch o.Failure {
	case FailureNone:
	case FailureConnect:
		return transportError(KindNetworkFailure, msgConnectFailed, o.Cause)
	case FailureTimeout:
		return transportError(KindTimeout, msgTimedOut, o.Cause)
	default:
		return transportError(KindNetworkFailure, msgTransport, o.Cause)
	}

	if o.Status < 400 {
		return nil
	}

	code, message, details := parseEnvelope(o.Body)
	e := &Error{
		Code:       code,
		Message:    message,
		StatusCode: o.Status,
	}

	switch o.Status {
	case nethttp.StatusUnauthorized:
		e.Kind = KindInvalidCredentials
	case nethttp.StatusPaymentRequired:
		e.Kind = KindQuotaExceeded
		e.Details = details
	case nethttp.StatusUnprocessableEntity:
		e.Kind = KindValidationFailed
		e.Details = details
	case nethttp.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.RetryAfter = parseRetryAfter(o.Headers)
	default:
		e.Kind = KindServerError
		e.Details = details
	}

	if e.Code == "" {
		e.Code = e.Kind.Code()
	}
	return e
}

func transportError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Code: kind.Code(), Message: message, Cause: cause}
}

func parseEnvelope(body []byte) (code, message string, details map[string]any) {
	var env errorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &env) != nil || env.Error == nil {
		return "", FallbackMessage, nil
	}
	message = env.Error.Message
	if message == "" {
		message = FallbackMessage
	}
	return env.Error.Code, message, env.Error.Details
}

// parseRetryAfter reads Retry-After as whole seconds. HTTP-date values,
// negatives and garbage are treated as absent.
func parseRetryAfter(h nethttp.Header) *int {
	if h == nil {
		return nil
	}
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return nil
	}
	return &secs
}
