package pulsesend

import (
	"time"
)

// EmailStatus is the delivery state of an email.
type EmailStatus string

const (
	StatusQueued     EmailStatus = "queued"
	StatusSent       EmailStatus = "sent"
	StatusDelivered  EmailStatus = "delivered"
	StatusFailed     EmailStatus = "failed"
	StatusBounced    EmailStatus = "bounced"
	StatusComplained EmailStatus = "complained"
)

// Recipient is an email address with an optional display name.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Address returns a Recipient without a display name.
func Address(email string) Recipient {
	return Recipient{Email: email}
}

// Addresses converts plain addresses into recipients.
func Addresses(emails ...string) []Recipient {
	out := make([]Recipient, len(emails))
	for i, e := range emails {
		out[i] = Address(e)
	}
	return out
}

// Attachment is a file sent with an email. Content is base64 encoded by the
// JSON encoder.
type Attachment struct {
	Filename    string `json:"filename"`
	Content     []byte `json:"content"`
	ContentType string `json:"contentType,omitempty"`
	// Disposition is "attachment" or "inline"
	Disposition string `json:"disposition,omitempty"`
	CID         string `json:"cid,omitempty"`
}

// SendEmailRequest is the payload of Emails.Send.
type SendEmailRequest struct {
	From        Recipient         `json:"from"`
	To          []Recipient       `json:"to"`
	Cc          []Recipient       `json:"cc,omitempty"`
	Bcc         []Recipient       `json:"bcc,omitempty"`
	Subject     string            `json:"subject"`
	Text        string            `json:"text,omitempty"`
	HTML        string            `json:"html,omitempty"`
	TemplateID  string            `json:"templateId,omitempty"`
	Variables   map[string]any    `json:"variables,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	SendAt      *time.Time        `json:"sendAt,omitempty"`
}

// SendEmailResponse is returned by Emails.Send.
type SendEmailResponse struct {
	ID          string      `json:"id"`
	MessageID   string      `json:"messageId"`
	Status      EmailStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	ScheduledAt *time.Time  `json:"scheduledAt,omitempty"`
}

// ListEmailsRequest filters Emails.List. Zero values are omitted.
type ListEmailsRequest struct {
	Status    EmailStatus
	To        string
	From      string
	Subject   string
	Tags      []string
	Limit     int
	Offset    int
	StartDate time.Time
	EndDate   time.Time
}

// EmailLog is a sent email as recorded by PulseSend.
type EmailLog struct {
	ID          string         `json:"id"`
	MessageID   string         `json:"messageId"`
	To          []Recipient    `json:"to"`
	From        Recipient      `json:"from"`
	Subject     string         `json:"subject"`
	Status      EmailStatus    `json:"status"`
	Tags        []string       `json:"tags"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
	SentAt      *time.Time     `json:"sentAt,omitempty"`
	DeliveredAt *time.Time     `json:"deliveredAt,omitempty"`
	FailedAt    *time.Time     `json:"failedAt,omitempty"`
	Error       string         `json:"error,omitempty"`
	Opens       int            `json:"opens"`
	Clicks      int            `json:"clicks"`
}

// Pagination describes a page of results.
type Pagination struct {
	Total   int  `json:"total"`
	Count   int  `json:"count"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// ListEmailsResponse is returned by Emails.List.
type ListEmailsResponse struct {
	Data       []EmailLog `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// AnalyticsRequest selects the period and tags of an analytics report.
type AnalyticsRequest struct {
	StartDate time.Time
	EndDate   time.Time
	Tags      []string
}

// Period is the time range a report covers.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// EmailCounts are delivery totals for a period.
type EmailCounts struct {
	Sent       int `json:"sent"`
	Delivered  int `json:"delivered"`
	Failed     int `json:"failed"`
	Bounced    int `json:"bounced"`
	Complained int `json:"complained"`
}

// EngagementStats are open and click totals for a period.
type EngagementStats struct {
	Opens     int     `json:"opens"`
	Clicks    int     `json:"clicks"`
	OpenRate  float64 `json:"openRate"`
	ClickRate float64 `json:"clickRate"`
}

// Reputation is the sender reputation score.
type Reputation struct {
	Score float64 `json:"score"`
	// Status is one of excellent, good, fair or poor
	Status string `json:"status"`
}

// AnalyticsOverview is returned by Analytics.Overview.
type AnalyticsOverview struct {
	Period     Period          `json:"period"`
	Emails     EmailCounts     `json:"emails"`
	Engagement EngagementStats `json:"engagement"`
	Reputation Reputation      `json:"reputation"`
}

// EngagementReport is returned by Analytics.Engagement.
type EngagementReport struct {
	Period Period `json:"period"`
	EngagementStats
}

// AnalyticsSummary combines the three analytics reports.
type AnalyticsSummary struct {
	Overview   *AnalyticsOverview
	Engagement *EngagementReport
	Reputation *Reputation
}
