// Package fakeserver runs an in-process PulseSend API for tests. Routes answer
// with scripted replies in order and repeat the last one; unscripted routes
// fall back to built-in handlers that behave like the real API.
//
//	srv := fakeserver.New(t)
//	srv.On(http.MethodPost, "/emails", fakeserver.Status(503), fakeserver.OK(data))
//	client, _ := pulsesend.New(testutil.TestAPIKey, pulsesend.WithBaseURL(srv.URL()))
package fakeserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BasePath is the API version prefix served by the fake
const BasePath = "/v1"

// Route patterns, relative to BasePath.
const (
	RoutePing                = "/ping"
	RouteEmails              = "/emails"
	RouteEmail               = "/emails/:id"
	RouteAnalyticsOverview   = "/analytics/overview"
	RouteAnalyticsEngagement = "/analytics/engagement"
	RouteAnalyticsReputation = "/analytics/reputation"
)

// Recorded is a request the fake received.
type Recorded struct {
	Method string
	// Route is the matched pattern, e.g. /emails/:id
	Route  string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a scripted PulseSend API.
type Server struct {
	http   *httptest.Server
	apiKey string

	mu       sync.Mutex
	scripts  map[string][]Reply
	served   map[string]int
	requests []Recorded
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey makes the fake reject requests without "Bearer <key>".
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// New starts a fake API that is closed when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		scripts: make(map[string][]Reply),
		served:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		status, code := http.StatusInternalServerError, "SERVER_ERROR"
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		if status == http.StatusNotFound {
			code = "NOT_FOUND"
		}
		_ = Error(status, code, err.Error()).write(c)
	}

	g := e.Group(BasePath, s.record, s.authenticate)
	g.GET(RoutePing, s.handle(pingHandler))
	g.POST(RouteEmails, s.handle(sendHandler))
	g.GET(RouteEmails, s.handle(listHandler))
	g.GET(RouteEmail, s.handle(notFoundHandler))
	g.DELETE(RouteEmail, s.handle(notFoundHandler))
	g.GET(RouteAnalyticsOverview, s.handle(notFoundHandler))
	g.GET(RouteAnalyticsEngagement, s.handle(notFoundHandler))
	g.GET(RouteAnalyticsReputation, s.handle(notFoundHandler))

	s.http = httptest.NewServer(e)
	t.Cleanup(s.http.Close)
	return s
}

// URL is the base URL to configure the client with.
func (s *Server) URL() string {
	return s.http.URL + BasePath
}

// Close stops the server early. Requests fail with a connection error afterwards.
func (s *Server) Close() {
	s.http.Close()
}

// On scripts replies for a route pattern such as RouteEmail.
func (s *Server) On(method, route string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, route)
	s.scripts[key] = replies
	s.served[key] = 0
}

// Requests returns every request received, in order.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Calls counts the requests received for a route pattern.
func (s *Server) Calls(method, route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Route == route {
			n++
		}
	}
	return n
}

// record stores the request before auth so rejected calls are counted too
func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		c.Set(bodyKey, body)

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: req.Method,
			Route:  trimBase(c.Path()),
			Path:   trimBase(req.URL.EscapedPath()),
			Query:  req.URL.Query(),
			Header: req.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.apiKey == "" || c.Request().Header.Get(echo.HeaderAuthorization) == "Bearer "+s.apiKey {
			return next(c)
		}
		return Error(http.StatusUnauthorized, "INVALID_API_KEY", "Invalid API key").write(c)
	}
}

// handle replays the scripted replies for the route, or runs fallback
func (s *Server) handle(fallback echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if reply, ok := s.next(c.Request().Method, trimBase(c.Path())); ok {
			return reply.write(c)
		}
		return fallback(c)
	}
}

func (s *Server) next(method, route string) (Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := routeKey(method, route)
	replies := s.scripts[key]
	if len(replies) == 0 {
		return Reply{}, false
	}
	idx := min(s.served[key], len(replies)-1)
	s.served[key]++
	return replies[idx], true
}

const bodyKey = "fakeserver.body"

func routeKey(method, route string) string {
	return method + " " + route
}

func trimBase(p string) string {
	if len(p) >= len(BasePath) && p[:len(BasePath)] == BasePath {
		return p[len(BasePath):]
	}
	return p
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}
