package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindMetadata(t *testing.T) {
	tests := []struct {
		kind      Kind
		name      string
		code      string
		retryable bool
	}{
		{KindInvalidCredentials, "invalid_credentials", "INVALID_API_KEY", false},
		{KindQuotaExceeded, "quota_exceeded", "QUOTA_EXCEEDED", false},
		{KindRateLimited, "rate_limited", "RATE_LIMITED", true},
		{KindValidationFailed, "validation_failed", "VALIDATION_ERROR", false},
		{KindServerError, "server_error", "SERVER_ERROR", true},
		{KindTimeout, "timeout", "TIMEOUT_ERROR", true},
		{KindNetworkFailure, "network_failure", "NETWORK_ERROR", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.code, tt.kind.Code())
			assert.Equal(t, tt.retryable, tt.kind.Retryable())
		})
	}

	assert.Equal(t, "kind(0)", Kind(0).String())
	assert.Equal(t, "UNKNOWN_ERROR", Kind(99).Code())
	assert.False(t, Kind(0).Retryable())
}

func TestErrorMessages(t *testing.T) {
	five := 5
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "server error",
			err:  &Error{Kind: KindServerError, StatusCode: 503, Message: "down"},
			want: "pulsesend: server_error (status 503): down",
		},
		{
			name: "rate limited with hint",
			err:  &Error{Kind: KindRateLimited, RetryAfter: &five, Message: "slow down"},
			want: "pulsesend: rate_limited (retry after 5s): slow down",
		},
		{
			name: "rate limited without hint",
			err:  &Error{Kind: KindRateLimited, Message: "slow down"},
			want: "pulsesend: rate_limited: slow down",
		},
		{
			name: "network failure with cause",
			err:  &Error{Kind: KindNetworkFailure, Message: "could not connect", Cause: errors.New("refused")},
			want: "pulsesend: network_failure: could not connect: refused",
		},
		{
			name: "validation",
			err:  &Error{Kind: KindValidationFailed, Message: "to is required"},
			want: "pulsesend: validation_failed: to is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorMatchesKindSentinel(t *testing.T) {
	sentinels := map[Kind]error{
		KindInvalidCredentials: ErrInvalidCredentials,
		KindQuotaExceeded:      ErrQuotaExceeded,
		KindRateLimited:        ErrRateLimited,
		KindValidationFailed:   ErrValidationFailed,
		KindServerError:        ErrServerError,
		KindTimeout:            ErrTimeout,
		KindNetworkFailure:     ErrNetworkFailure,
	}
	for kind, sentinel := range sentinels {
		err := fmt.Errorf("sending email: %w", &Error{Kind: kind})
		assert.ErrorIs(t, err, sentinel, kind.String())
		for other, otherSentinel := range sentinels {
			if other != kind {
				assert.NotErrorIs(t, err, otherSentinel, "%s should not match %s", kind, other)
			}
		}
	}
}

func TestAsErrorAndIsKind(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", &Error{Kind: KindQuotaExceeded, Details: map[string]any{"limit": float64(100)}})

	got, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindQuotaExceeded, got.Kind)
	assert.Equal(t, float64(100), got.Details["limit"])
	assert.True(t, IsKind(wrapped, KindQuotaExceeded))
	assert.False(t, IsKind(wrapped, KindServerError))

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsKind(nil, KindTimeout))
}

func TestCanceledError(t *testing.T) {
	last := &Error{Kind: KindServerError, StatusCode: 500, Message: "boom"}
	err := &CanceledError{Attempts: 2, Last: last, Err: context.Canceled}

	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
	assert.Contains(t, err.Error(), "boom")

	bare := &CanceledError{Err: context.DeadlineExceeded}
	assert.Equal(t, "pulsesend: request canceled after 0 attempt(s): context deadline exceeded", bare.Error())
}
