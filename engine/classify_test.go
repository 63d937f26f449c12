package engine

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTransportFailures(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	tests := []struct {
		name    string
		failure Failure
		kind    Kind
	}{
		{name: "connect", failure: FailureConnect, kind: KindNetworkFailure},
		{name: "timeout", failure: FailureTimeout, kind: KindTimeout},
		{name: "other", failure: FailureOther, kind: KindNetworkFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Outcome{Failure: tt.failure, Cause: cause})
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.kind.Code(), got.Code)
			assert.Zero(t, got.StatusCode)
			assert.Nil(t, got.RetryAfter)
			assert.NotEmpty(t, got.Message)
			assert.ErrorIs(t, got, cause)
		})
	}
}

func TestClassifySuccessIsNotAnError(t *testing.T) {
	for _, status := range []int{200, 201, 204, 301, 304, 399} {
		assert.Nil(t, Classify(Outcome{Status: status, Body: []byte(`{"error":{"message":"x"}}`)}), "status %d", status)
	}
}

func TestClassifyByStatus(t *testing.T) {
	details := map[string]any{"field": "to", "reason": "missing"}
	envelope := `{"error":{"code":"%s","message":"server says no","details":{"field":"to","reason":"missing"}}}`

	tests := []struct {
		status      int
		code        string
		kind        Kind
		wantDetails bool
	}{
		{status: 401, code: "INVALID_API_KEY", kind: KindInvalidCredentials},
		{status: 402, code: "QUOTA_EXCEEDED", kind: KindQuotaExceeded, wantDetails: true},
		{status: 422, code: "VALIDATION_ERROR", kind: KindValidationFailed, wantDetails: true},
		{status: 429, code: "RATE_LIMITED", kind: KindRateLimited},
		{status: 500, code: "SERVER_ERROR", kind: KindServerError, wantDetails: true},
		{status: 502, code: "BAD_GATEWAY", kind: KindServerError, wantDetails: true},
		{status: 503, code: "SERVER_ERROR", kind: KindServerError, wantDetails: true},
		{status: 504, code: "SERVER_ERROR", kind: KindServerError, wantDetails: true},
	}
	for _, tt := range tests {
		t.Run(nethttp.StatusText(tt.status), func(t *testing.T) {
			got := Classify(Outcome{Status: tt.status, Body: fmt.Appendf(nil, envelope, tt.code)})
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, "server says no", got.Message)
			assert.Equal(t, tt.status, got.StatusCode)
			if tt.wantDetails {
				assert.Equal(t, details, got.Details)
			} else {
				assert.Nil(t, got.Details)
			}
		})
	}
}

func TestClassifyUnlistedStatusesAreServerErrors(t *testing.T) {
	listed := map[int]bool{401: true, 402: true, 422: true, 429: true, 500: true, 502: true, 503: true, 504: true}
	for status := 400; status <= 599; status++ {
		if listed[status] {
			continue
		}
		got := Classify(Outcome{Status: status, Body: []byte(`not json`)})
		require.NotNil(t, got, "status %d", status)
		assert.Equal(t, KindServerError, got.Kind, "status %d", status)
		assert.Equal(t, status, got.StatusCode, "status %d", status)
	}

	got := Classify(Outcome{Status: 999})
	require.NotNil(t, got)
	assert.Equal(t, KindServerError, got.Kind)
}

func TestClassifyFallbackMessage(t *testing.T) {
	bodies := map[string]string{
		"empty":             "",
		"html":              "<html><body>Bad Gateway</body></html>",
		"truncated json":    `{"error":{"message":"cut`,
		"no error object":   `{"success":false}`,
		"error not object":  `{"error":"boom"}`,
		"empty message":     `{"error":{"code":"X","message":""}}`,
		"null error object": `{"error":null}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			got := Classify(Outcome{Status: 500, Body: []byte(body)})
			require.NotNil(t, got)
			assert.Equal(t, "An unknown error occurred", got.Message)
			assert.NotEmpty(t, got.Code)
		})
	}
}

func TestClassifyCodeDefaultsToKindCode(t *testing.T) {
	got := Classify(Outcome{Status: 422, Body: []byte(`{"error":{"message":"bad"}}`)})
	require.NotNil(t, got)
	assert.Equal(t, "VALIDATION_ERROR", got.Code)
	assert.Equal(t, "bad", got.Message)
}

func TestClassifyRetryAfter(t *testing.T) {
	seconds := func(n int) *int { return &n }
	tests := []struct {
		name   string
		header nethttp.Header
		want   *int
	}{
		{name: "missing", header: nil, want: nil},
		{name: "empty", header: nethttp.Header{"Retry-After": {""}}, want: nil},
		{name: "seconds", header: nethttp.Header{"Retry-After": {"5"}}, want: seconds(5)},
		{name: "padded", header: nethttp.Header{"Retry-After": {" 12 "}}, want: seconds(12)},
		{name: "zero", header: nethttp.Header{"Retry-After": {"0"}}, want: seconds(0)},
		{name: "negative", header: nethttp.Header{"Retry-After": {"-3"}}, want: nil},
		{name: "fractional", header: nethttp.Header{"Retry-After": {"1.5"}}, want: nil},
		{name: "http date", header: nethttp.Header{"Retry-After": {"Wed, 21 Oct 2015 07:28:00 GMT"}}, want: nil},
		{name: "garbage", header: nethttp.Header{"Retry-After": {"soon"}}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Outcome{Status: 429, Headers: tt.header, Body: []byte(rateLimitedBody)})
			require.NotNil(t, got)
			assert.Equal(t, KindRateLimited, got.Kind)
			assert.Equal(t, tt.want, got.RetryAfter)
		})
	}
}

func TestClassifyRetryAfterOnlyForRateLimit(t *testing.T) {
	got := Classify(Outcome{
		Status:  503,
		Headers: nethttp.Header{"Retry-After": {"30"}},
		Body:    []byte(serverErrorBody),
	})
	require.NotNil(t, got)
	assert.Nil(t, got.RetryAfter)
}

func TestOutcomeFrom(t *testing.T) {
	t.Run("response", func(t *testing.T) {
		s := respond(418, "teapot", "X-Test", "1")
		o := OutcomeFrom(s.resp, nil)
		assert.Equal(t, FailureNone, o.Failure)
		assert.Equal(t, 418, o.Status)
		assert.Equal(t, "teapot", string(o.Body))
		assert.Equal(t, "1", o.Headers.Get("X-Test"))
		assert.False(t, o.IsSuccess())
	})

	t.Run("connect failure", func(t *testing.T) {
		s := connectFailure()
		o := OutcomeFrom(nil, s.err)
		assert.Equal(t, FailureConnect, o.Failure)
		assert.Equal(t, s.err, o.Cause)
	})

	t.Run("timeout", func(t *testing.T) {
		o := OutcomeFrom(nil, timeoutFailure().err)
		assert.Equal(t, FailureTimeout, o.Failure)
	})

	t.Run("untyped error", func(t *testing.T) {
		o := OutcomeFrom(nil, context.Canceled)
		assert.Equal(t, FailureOther, o.Failure)
	})

	t.Run("nil response and nil error", func(t *testing.T) {
		o := OutcomeFrom(nil, nil)
		assert.Equal(t, FailureOther, o.Failure)
		assert.Equal(t, KindNetworkFailure, Classify(o).Kind)
	})

	t.Run("success", func(t *testing.T) {
		o := OutcomeFrom(respond(204, "").resp, nil)
		assert.True(t, o.IsSuccess())
	})
}
