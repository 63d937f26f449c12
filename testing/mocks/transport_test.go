package mocks

import (
	"context"
	"errors"
	nethttp "net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsesend/pulsesend-go/httpclient"
)

func TestMockTransportOrderedExpectations(t *testing.T) {
	m := &MockTransport{}
	m.ExpectStatus(nethttp.MethodGet, 503, nil).Once()
	m.ExpectStatus(nethttp.MethodGet, 200, []byte(`ok`))

	resp, err := m.Do(context.Background(), nethttp.MethodGet, &httpclient.Request{URL: "https://api/x"})
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	resp, err = m.Do(context.Background(), nethttp.MethodGet, &httpclient.Request{URL: "https://api/x"})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), resp.Body)

	m.AssertNumberOfCalls(t, "Do", 2)
}

func TestMockTransportMatchesURL(t *testing.T) {
	m := &MockTransport{}
	m.ExpectResponse(nethttp.MethodGet, func(url string) bool { return strings.HasSuffix(url, "/ping") },
		&httpclient.Response{StatusCode: 200})
	m.ExpectError(nethttp.MethodDelete, errors.New("boom"))

	resp, err := m.Do(context.Background(), nethttp.MethodGet, &httpclient.Request{URL: "https://api/ping"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = m.Do(context.Background(), nethttp.MethodDelete, &httpclient.Request{URL: "https://api/emails/1"})
	assert.Nil(t, resp)
	assert.EqualError(t, err, "boom")
}
