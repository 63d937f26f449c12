package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func errOfKind(kind Kind) *Error {
	return &Error{Kind: kind, Code: kind.Code(), Message: "test"}
}

func TestDecideNonRetryableKindsGiveUp(t *testing.T) {
	for _, kind := range []Kind{KindInvalidCredentials, KindQuotaExceeded, KindValidationFailed} {
		for _, attempt := range []int{1, 2, 5} {
			d := Decide(errOfKind(kind), attempt, 10, time.Second)
			assert.False(t, d.ShouldRetry(), "%s attempt %d", kind, attempt)
			assert.Zero(t, d.Delay())
		}
	}
}

func TestDecideExponentialBackoff(t *testing.T) {
	base := 1000 * time.Millisecond
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 1000 * time.Millisecond},
		{attempt: 2, want: 2000 * time.Millisecond},
		{attempt: 3, want: 4000 * time.Millisecond},
		{attempt: 4, want: 8000 * time.Millisecond},
		{attempt: 5, want: 16000 * time.Millisecond},
	}
	for _, kind := range []Kind{KindServerError, KindTimeout, KindNetworkFailure, KindRateLimited} {
		for _, tt := range tests {
			d := Decide(errOfKind(kind), tt.attempt, 5, base)
			assert.True(t, d.ShouldRetry(), "%s attempt %d", kind, tt.attempt)
			assert.Equal(t, tt.want, d.Delay(), "%s attempt %d", kind, tt.attempt)
		}
	}
}

func TestDecideStopsAfterMaxRetries(t *testing.T) {
	hint := 5
	limited := errOfKind(KindRateLimited)
	limited.RetryAfter = &hint

	for _, err := range []*Error{errOfKind(KindServerError), errOfKind(KindTimeout), errOfKind(KindNetworkFailure), limited} {
		assert.True(t, Decide(err, 3, 3, time.Second).ShouldRetry(), err.Kind.String())
		assert.False(t, Decide(err, 4, 3, time.Second).ShouldRetry(), err.Kind.String())
		assert.False(t, Decide(err, 100, 3, time.Second).ShouldRetry(), err.Kind.String())
	}
}

func TestDecideZeroRetriesNeverRetries(t *testing.T) {
	for kind := KindInvalidCredentials; kind <= KindNetworkFailure; kind++ {
		assert.False(t, Decide(errOfKind(kind), 1, 0, time.Second).ShouldRetry(), kind.String())
	}
}

func TestDecideRateLimitHint(t *testing.T) {
	tests := []struct {
		name    string
		hint    *int
		attempt int
		want    time.Duration
	}{
		{name: "hint overrides backoff", hint: intPtr(5), attempt: 1, want: 5 * time.Second},
		{name: "hint on later attempt", hint: intPtr(2), attempt: 3, want: 2 * time.Second},
		{name: "zero hint", hint: intPtr(0), attempt: 2, want: 0},
		{name: "no hint falls back", hint: nil, attempt: 2, want: 200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errOfKind(KindRateLimited)
			err.RetryAfter = tt.hint
			d := Decide(err, tt.attempt, 3, 100*time.Millisecond)
			assert.True(t, d.ShouldRetry())
			assert.Equal(t, tt.want, d.Delay())
		})
	}
}

func TestDecideIsPure(t *testing.T) {
	err := errOfKind(KindServerError)
	first := Decide(err, 2, 3, time.Second)
	for range 100 {
		assert.Equal(t, first, Decide(err, 2, 3, time.Second))
	}
}

func TestDecideNilError(t *testing.T) {
	assert.False(t, Decide(nil, 1, 3, time.Second).ShouldRetry())
}

func TestBackoffSaturates(t *testing.T) {
	assert.Equal(t, time.Duration(math.MaxInt64), backoff(time.Hour, 64))
	assert.Equal(t, time.Duration(math.MaxInt64), backoff(time.Hour, 40))
	assert.Equal(t, time.Duration(math.MaxInt64), backoff(time.Nanosecond, 1000))
	assert.Equal(t, time.Nanosecond<<62, backoff(time.Nanosecond, 63))
	assert.Equal(t, time.Second, backoff(time.Second, 0))

	huge := math.MaxInt
	assert.Equal(t, time.Duration(math.MaxInt64), secondsDelay(huge))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "give up", GiveUp().String())
	assert.Equal(t, "retry in 1.5s", Retry(1500*time.Millisecond).String())
}

func intPtr(n int) *int { return &n }
