package fakeserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Reply is one scripted response.
type Reply struct {
	Status  int
	Headers map[string]string
	// JSON is encoded as the body unless Raw is set
	JSON any
	Raw  *string
	// Hang blocks until the client gives up on the request
	Hang bool
}

// Envelope is the success wrapper the API puts around every payload.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the API error code and message.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// OK answers 200 with data in a success envelope.
func OK(data any) Reply {
	return Reply{Status: http.StatusOK, JSON: Envelope{Success: true, Data: data, RequestID: newRequestID()}}
}

// Created answers 201 with data in a success envelope.
func Created(data any) Reply {
	r := OK(data)
	r.Status = http.StatusCreated
	return r
}

// Error answers status with an error envelope.
func Error(status int, code, message string) Reply {
	return Reply{Status: status, JSON: ErrorBody{Error: ErrorDetail{Code: code, Message: message}}}
}

// ErrorWithDetails answers status with an error envelope carrying details.
func ErrorWithDetails(status int, code, message string, details map[string]any) Reply {
	return Reply{Status: status, JSON: ErrorBody{Error: ErrorDetail{Code: code, Message: message, Details: details}}}
}

// RateLimited answers 429. A negative retryAfter omits the header.
func RateLimited(retryAfter int) Reply {
	r := Error(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
	if retryAfter >= 0 {
		r.Headers = map[string]string{"Retry-After": strconv.Itoa(retryAfter)}
	}
	return r
}

// Status answers with an empty body.
func Status(status int) Reply {
	empty := ""
	return Reply{Status: status, Raw: &empty}
}

// Raw answers with a literal body.
func Raw(status int, body string) Reply {
	return Reply{Status: status, Raw: &body}
}

// Hang never answers; the request ends when the client times out or cancels.
func Hang() Reply {
	return Reply{Hang: true}
}

func (r Reply) write(c echo.Context) error {
	if r.Hang {
		<-c.Request().Context().Done()
		return nil
	}
	for k, v := range r.Headers {
		c.Response().Header().Set(k, v)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if r.Raw != nil {
		return c.Blob(status, echo.MIMEApplicationJSON, []byte(*r.Raw))
	}
	if r.JSON == nil {
		return c.NoContent(status)
	}
	return c.JSON(status, r.JSON)
}
