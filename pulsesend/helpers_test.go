package pulsesend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulsesend/pulsesend-go/internal/testutil"
	"github.com/pulsesend/pulsesend-go/testing/fakeserver"
)

// newTestClient points a client at a fresh fake API. Retry waits go through a fake clock.
func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeserver.Server, *testutil.FakeClock) {
	t.Helper()
	srv := fakeserver.New(t, fakeserver.WithAPIKey(testutil.TestAPIKey))
	clock := testutil.NewFakeClock()

	base := []Option{
		WithBaseURL(srv.URL()),
		WithTimeout(2 * time.Second),
		WithClock(clock),
	}
	client, err := New(testutil.TestAPIKey, append(base, opts...)...)
	require.NoError(t, err)
	return client, srv, clock
}

func welcomeEmail() *SendEmailRequest {
	return &SendEmailRequest{
		From:    Recipient{Email: testutil.TestEmailAlice, Name: "Alice"},
		To:      Addresses(testutil.TestEmailBob),
		Subject: testutil.TestSubject,
		HTML:    "<p>Hi Bob</p>",
		Tags:    []string{"welcome"},
	}
}
