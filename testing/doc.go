// Package testing groups test helpers for code built on the PulseSend SDK.
//
// # Mocks
//
// The mocks subpackage provides a testify-based httpclient.Client that can be
// handed to pulsesend.WithTransport.
//
// # Fixtures
//
// The fixtures subpackage builds canned transport responses and
// pre-configured mock transports:
//   - success and error envelopes
//   - rate-limit responses with Retry-After
//   - connection and timeout failures
//
// # Fake server
//
// The fakeserver subpackage runs an in-process PulseSend API over real HTTP
// with scripted replies per route.
//
//	import (
//		"github.com/pulsesend/pulsesend-go/testing/fakeserver"
//		"github.com/pulsesend/pulsesend-go/testing/fixtures"
//		"github.com/pulsesend/pulsesend-go/testing/mocks"
//	)
package testing
