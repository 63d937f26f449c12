package mocks

import (
	"context"
	nethttp "net/http"

	"github.com/stretchr/testify/mock"

	"github.com/pulsesend/pulsesend-go/httpclient"
)

// MockTransport provides a testify-based mock implementation of httpclient.Client.
//
// Example usage:
//
//	transport := &mocks.MockTransport{}
//	transport.ExpectStatus(nethttp.MethodPost, 503, nil).Once()
//	transport.ExpectStatus(nethttp.MethodPost, 200, []byte(`{"success":true,"data":{}}`))
//	client, _ := pulsesend.New(key, pulsesend.WithTransport(transport))
type MockTransport struct {
	mock.Mock
}

var _ httpclient.Client = (*MockTransport)(nil)

// Do implements httpclient.Client
func (m *MockTransport) Do(ctx context.Context, method string, req *httpclient.Request) (*httpclient.Response, error) {
	arguments := m.Called(ctx, method, req)
	var resp *httpclient.Response
	if r := arguments.Get(0); r != nil {
		resp = r.(*httpclient.Response)
	}
	return resp, arguments.Error(1)
}

// ExpectStatus answers every method call with status and body.
func (m *MockTransport) ExpectStatus(method string, status int, body []byte) *mock.Call {
	return m.On("Do", mock.Anything, method, mock.Anything).
		Return(&httpclient.Response{StatusCode: status, Body: body, Headers: nethttp.Header{}}, nil)
}

// ExpectResponse answers calls whose URL satisfies match.
func (m *MockTransport) ExpectResponse(method string, match func(url string) bool, resp *httpclient.Response) *mock.Call {
	return m.On("Do", mock.Anything, method, mock.MatchedBy(func(req *httpclient.Request) bool {
		return match(req.URL)
	})).Return(resp, nil)
}

// ExpectError fails method calls with err.
func (m *MockTransport) ExpectError(method string, err error) *mock.Call {
	return m.On("Do", mock.Anything, method, mock.Anything).Return(nil, err)
}
