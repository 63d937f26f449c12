package pulsesend

import (
	"context"
	nethttp "net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/pulsesend/pulsesend-go/engine"
)

// AnalyticsService reads delivery and engagement reports.
type AnalyticsService struct {
	client *Client
}

// Overview returns delivery, engagement and reputation totals.
func (s *AnalyticsService) Overview(ctx context.Context, req *AnalyticsRequest) (*AnalyticsOverview, error) {
	var out AnalyticsOverview
	if err := s.client.call(ctx, "analytics overview", analyticsRequest("/analytics/overview", req.query()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Engagement returns open and click statistics.
func (s *AnalyticsService) Engagement(ctx context.Context, req *AnalyticsRequest) (*EngagementReport, error) {
	var out EngagementReport
	if err := s.client.call(ctx, "analytics engagement", analyticsRequest("/analytics/engagement", req.query()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reputation returns the current sender reputation.
func (s *AnalyticsService) Reputation(ctx context.Context) (*Reputation, error) {
	var out Reputation
	if err := s.client.call(ctx, "analytics reputation", analyticsRequest("/analytics/reputation", nil), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary fetches the overview, engagement and reputation reports
// concurrently. The first failure cancels the other requests.
func (s *AnalyticsService) Summary(ctx context.Context, req *AnalyticsRequest) (*AnalyticsSummary, error) {
	var summary AnalyticsSummary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		overview, err := s.Overview(gctx, req)
		summary.Overview = overview
		return err
	})
	g.Go(func() error {
		engagement, err := s.Engagement(gctx, req)
		summary.Engagement = engagement
		return err
	})
	g.Go(func() error {
		reputation, err := s.Reputation(gctx)
		summary.Reputation = reputation
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

func analyticsRequest(path string, query url.Values) *engine.Request {
	return &engine.Request{Method: nethttp.MethodGet, Path: path, Query: query}
}

func (r *AnalyticsRequest) query() url.Values {
	q := url.Values{}
	if r == nil {
		return q
	}
	setDate(q, "start_date", r.StartDate)
	setDate(q, "end_date", r.EndDate)
	for _, tag := range r.Tags {
		q.Add("tags[]", tag)
	}
	return q
}
