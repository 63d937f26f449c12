package pulsesend

import (
	"context"
	nethttp "net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pulsesend/pulsesend-go/engine"
)

const (
	pathEmails = "/emails"
	routeEmail = "/emails/{id}"
)

// EmailsService sends and inspects emails.
type EmailsService struct {
	client *Client
}

// Send queues an email for delivery. Sending is not idempotent: a retried
// attempt after a timeout may deliver the email twice.
func (s *EmailsService) Send(ctx context.Context, req *SendEmailRequest) (*SendEmailResponse, error) {
	var out SendEmailResponse
	if err := s.client.call(ctx, "send email", &engine.Request{Method: nethttp.MethodPost, Path: pathEmails}, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns sent emails matching req. A nil req lists without filters.
func (s *EmailsService) List(ctx context.Context, req *ListEmailsRequest) (*ListEmailsResponse, error) {
	var out ListEmailsResponse
	if err := s.client.call(ctx, "list emails", &engine.Request{Method: nethttp.MethodGet, Path: pathEmails, Query: req.query()}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single email by id.
func (s *EmailsService) Get(ctx context.Context, id string) (*EmailLog, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	var out EmailLog
	if err := s.client.call(ctx, "get email", emailRequest(nethttp.MethodGet, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel cancels a scheduled email.
func (s *EmailsService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return s.client.call(ctx, "cancel email", emailRequest(nethttp.MethodDelete, id), nil, nil)
}

func emailRequest(method, id string) *engine.Request {
	return &engine.Request{Method: method, Route: routeEmail, Path: pathEmails + "/" + url.PathEscape(id)}
}

func (r *ListEmailsRequest) query() url.Values {
	q := url.Values{}
	if r == nil {
		return q
	}
	setIfNotEmpty(q, "status", string(r.Status))
	setIfNotEmpty(q, "to", r.To)
	setIfNotEmpty(q, "from", r.From)
	setIfNotEmpty(q, "subject", r.Subject)
	for _, tag := range r.Tags {
		q.Add("tags[]", tag)
	}
	if r.Limit > 0 {
		q.Set("limit", strconv.Itoa(r.Limit))
	}
	if r.Offset > 0 {
		q.Set("offset", strconv.Itoa(r.Offset))
	}
	setDate(q, "start_date", r.StartDate)
	setDate(q, "end_date", r.EndDate)
	return q
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setDate(q url.Values, key string, t time.Time) {
	if !t.IsZero() {
		q.Set(key, t.UTC().Format(time.RFC3339))
	}
}
