package fakeserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// sendPayload holds the fields the fake validates on send
type sendPayload struct {
	From    *struct{ Email string }  `json:"from"`
	To      []struct{ Email string } `json:"to"`
	Subject string                   `json:"subject"`
	SendAt  *time.Time               `json:"sendAt"`
}

func pingHandler(c echo.Context) error {
	return OK(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}).write(c)
}

func sendHandler(c echo.Context) error {
	body, _ := c.Get(bodyKey).([]byte)
	var p sendPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Error(http.StatusBadRequest, "INVALID_REQUEST", "Request body must be JSON").write(c)
	}

	switch {
	case p.From == nil || p.From.Email == "":
		return validationError("from", "from is required").write(c)
	case len(p.To) == 0:
		return validationError("to", "at least one recipient is required").write(c)
	case p.Subject == "":
		return validationError("subject", "subject is required").write(c)
	}

	now := time.Now().UTC()
	data := map[string]any{
		"id":        "email_" + newRequestID()[len("req_"):],
		"messageId": "<" + newRequestID() + "@pulsesend.test>",
		"status":    "queued",
		"createdAt": now,
	}
	if p.SendAt != nil {
		data["scheduledAt"] = p.SendAt.UTC()
	}
	return Created(data).write(c)
}

func listHandler(c echo.Context) error {
	return OK(map[string]any{
		"data":       []any{},
		"pagination": map[string]any{"total": 0, "count": 0, "offset": 0, "limit": 50, "hasMore": false},
	}).write(c)
}

func notFoundHandler(c echo.Context) error {
	return Error(http.StatusNotFound, "NOT_FOUND", "Resource not found").write(c)
}

func validationError(field, message string) Reply {
	return ErrorWithDetails(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, map[string]any{"field": field})
}
