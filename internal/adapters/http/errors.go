package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/txomin/geoapi"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, upstream_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errUpstream maps the client error taxonomy onto proxy HTTP responses.
func errUpstream(c *fiber.Ctx, err error) error {
	var remote *geoapi.APIError
	if errors.As(err, &remote) {
		switch remote.Status {
		case geoapi.StatusInvalidRequest:
			return newError(c, 400, "bad_request", remote.Error())
		case geoapi.StatusNotFound, geoapi.StatusZeroResults:
			return newError(c, 404, "not_found", remote.Error())
		case geoapi.StatusRequestDenied:
			return newError(c, 403, "request_denied", remote.Error())
		case geoapi.StatusOverQueryLimit, geoapi.StatusOverDailyLimit:
			return newError(c, 429, "over_query_limit", remote.Error())
		default:
			return newError(c, 502, "upstream_error", remote.Error())
		}
	}

	switch {
	case errors.Is(err, geoapi.ErrInvalidParams):
		return newError(c, 400, "bad_request", err.Error())
	case errors.Is(err, geoapi.ErrDecode):
		return newError(c, 502, "upstream_error", err.Error())
	case errors.Is(err, geoapi.ErrCancelled):
		return newError(c, 504, "upstream_timeout", err.Error())
	default:
		var budget *geoapi.RetryBudgetError
		if errors.As(err, &budget) {
			return newError(c, 504, "upstream_timeout", err.Error())
		}
		return newError(c, 502, "upstream_error", err.Error())
	}
}
