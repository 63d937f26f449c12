// Package testutil provides shared constants and helpers for tests across the SDK.
package testutil

// API credentials and endpoints used by tests.
const (
	// TestAPIKey is a syntactically valid PulseSend key
	TestAPIKey = "pk_test_0123456789"

	// TestBaseURL is a placeholder base URL; tests talking to real sockets use httptest
	TestBaseURL = "https://api.pulsesend.test/v1"

	// TestConnectionRefused is the message used for simulated dial failures
	TestConnectionRefused = "connection refused"
)

// Email fixtures.
const (
	TestEmailAlice = "alice@example.com"
	TestEmailBob   = "bob@example.com"
	TestSubject    = "Welcome aboard"
	TestEmailID    = "e1"
)

// Log levels.
const (
	TestLoggerLevelDebug    = "debug"
	TestLoggerLevelDisabled = "disabled"
)
