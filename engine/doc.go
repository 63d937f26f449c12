// Package engine executes PulseSend API requests with bounded retries.
//
// An Engine sends a Request through an httpclient.Client, turns every
// non-success outcome into a typed *Error, and asks the retry policy whether
// to try again:
//
//	eng, err := engine.New(transport, engine.Config{
//	    BaseURL:    "https://api.pulsesend.com/v1",
//	    MaxRetries: 3,
//	    BaseDelay:  time.Second,
//	})
//	body, err := eng.Execute(ctx, &engine.Request{Method: http.MethodGet, Path: "/ping"})
//
// # Retry behaviour
//
// Network failures, timeouts and server errors are retried with delays of
// BaseDelay, 2*BaseDelay, 4*BaseDelay and so on. Rate limited responses wait
// for the server's Retry-After hint when it is present. Invalid credentials,
// exhausted quota and validation failures are never retried. A call makes at
// most MaxRetries+1 attempts, and when all of them fail the error from the
// last attempt is returned.
//
// # Errors
//
// Every failure is an *Error whose Kind can be branched on:
//
//	var apiErr *engine.Error
//	if errors.As(err, &apiErr) && apiErr.Kind == engine.KindRateLimited {
//	    // apiErr.RetryAfter holds the server hint in seconds, if any
//	}
//
// or with the sentinels: errors.Is(err, engine.ErrValidationFailed).
// Cancelling the context fails the call with a *CanceledError.
package engine
