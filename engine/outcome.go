package engine

import (
	nethttp "net/http"

	"github.com/pulsesend/pulsesend-go/httpclient"
)

// Failure classifies a transport outcome that produced no HTTP response
type Failure int

const (
	// FailureNone marks an outcome that carries an HTTP response
	FailureNone Failure = iota
	// FailureConnect means no connection could be established
	FailureConnect
	// FailureTimeout means the attempt timed out
	FailureTimeout
	// FailureOther is every other transport failure
	FailureOther
)

// Outcome is what a single attempt produced: a response with any status, or
// a transport failure.
type Outcome struct {
	Status  int
	Headers nethttp.Header
	Body    []byte

	Failure Failure
	Cause   error
}

// IsSuccess reports whether the outcome is a response with status below 400
func (o Outcome) IsSuccess() bool {
	return o.Failure == FailureNone && o.Status < 400
}

// OutcomeFrom converts a transport result into an Outcome.
func OutcomeFrom(resp *httpclient.Response, err error) Outcome {
	if err != nil {
		return Outcome{Failure: failureOf(err), Cause: err}
	}
	if resp == nil {
		return Outcome{Failure: FailureOther, Cause: errNilResponse}
	}
	return Outcome{Status: resp.StatusCode, Headers: resp.Headers, Body: resp.Body}
}

func failureOf(err error) Failure {
	switch {
	case httpclient.IsErrorType(err, httpclient.ConnectError):
		return FailureConnect
	case httpclient.IsErrorType(err, httpclient.TimeoutError):
		return FailureTimeout
	default:
		return FailureOther
	}
}

// rejected reports whether err means the request itself was unusable
func rejected(err error) bool {
	return httpclient.IsErrorType(err, httpclient.RequestError) ||
		httpclient.IsErrorType(err, httpclient.InterceptorError)
}
