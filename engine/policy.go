package engine

import (
	"math"
	"time"
)

// Decision is the retry policy's verdict for a failed attempt
type Decision struct {
	retry bool
	delay time.Duration
}

// Retry builds a decision to wait d and try again
func Retry(d time.Duration) Decision { return Decision{retry: true, delay: d} }

// GiveUp builds a decision to stop and report the error
func GiveUp() Decision { return Decision{} }

// ShouldRetry reports whether another attempt should be made
func (d Decision) ShouldRetry() bool { return d.retry }

// Delay is the wait before the next attempt. Zero for GiveUp.
func (d Decision) Delay() time.Duration { return d.delay }

func (d Decision) String() string {
	if !d.retry {
		return "give up"
	}
	return "retry in " + d.delay.String()
}

// Decide is the retry policy. attempt is 1-based and counts the attempt that
// just failed. The result depends only on the arguments.
func Decide(err *Error, attempt, maxRetries int, baseDelay time.Duration) Decision {
	if err == nil || !err.Kind.Retryable() {
		return GiveUp()
	}
	if attempt > maxRetries {
		return GiveUp()
	}
	if err.Kind == KindRateLimited && err.RetryAfter != nil {
		return Retry(secondsDelay(*err.RetryAfter))
	}
	return Retry(backoff(baseDelay, attempt))
}

// backoff returns base * 2^(attempt-1), saturating at the largest Duration
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift >= 63 || base > time.Duration(math.MaxInt64>>shift) {
		return time.Duration(math.MaxInt64)
	}
	return base << shift
}

func secondsDelay(secs int) time.Duration {
	if secs <= 0 {
		return 0
	}
	if int64(secs) > int64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(secs) * time.Second
}
