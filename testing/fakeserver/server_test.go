package fakeserver

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string, header ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestScriptedRepliesRepeatLast(t *testing.T) {
	srv := New(t)
	srv.On(http.MethodGet, RoutePing, Status(503), RateLimited(2), OK(map[string]string{"status": "ok"}))

	resp, _ := get(t, srv.URL()+RoutePing)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, body := get(t, srv.URL()+RoutePing)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":{"code":"RATE_LIMITED","message":"Too many requests"}}`, body)

	for range 2 {
		resp, body = get(t, srv.URL()+RoutePing)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"data":{"status":"ok"}`)
	}
	assert.Equal(t, 4, srv.Calls(http.MethodGet, RoutePing))
}

func TestRecordsRoutePatternAndQuery(t *testing.T) {
	srv := New(t)
	srv.On(http.MethodGet, RouteEmail, OK(map[string]string{"id": "e1"}))

	resp, _ := get(t, srv.URL()+"/emails/e1?expand=events")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, RouteEmail, reqs[0].Route)
	assert.Equal(t, "/emails/e1", reqs[0].Path)
	assert.Equal(t, "events", reqs[0].Query.Get("expand"))
}

func TestAuthenticationRejectsWrongKey(t *testing.T) {
	srv := New(t, WithAPIKey("pk_test_key"))

	resp, body := get(t, srv.URL()+RoutePing, "Authorization", "Bearer pk_other")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "INVALID_API_KEY")

	resp, _ = get(t, srv.URL()+RoutePing, "Authorization", "Bearer pk_test_key")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, srv.Calls(http.MethodGet, RoutePing))
}

func TestSendHandlerValidates(t *testing.T) {
	srv := New(t)

	post := func(body string) (*http.Response, string) {
		resp, err := http.Post(srv.URL()+RouteEmails, "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(b)
	}

	resp, body := post(`{"from":{"email":"a@example.com"},"to":[],"subject":"hi"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `"field":"to"`)

	resp, body = post(`{"from":{"email":"a@example.com"},"to":[{"email":"b@example.com"}],"subject":"hi"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, `"status":"queued"`)

	resp, _ = post(`not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnscriptedAnalyticsIsNotFound(t *testing.T) {
	srv := New(t)
	resp, body := get(t, srv.URL()+RouteAnalyticsOverview)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "NOT_FOUND")
}
