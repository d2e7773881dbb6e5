package geoapi

import (
	"errors"
	"fmt"
	"time"
)

// StatusCode is the stable status enumeration carried by remote API errors.
type StatusCode string

const (
	StatusOK             StatusCode = "OK"
	StatusZeroResults    StatusCode = "ZERO_RESULTS"
	StatusOverQueryLimit StatusCode = "OVER_QUERY_LIMIT"
	StatusOverDailyLimit StatusCode = "OVER_DAILY_LIMIT"
	StatusRequestDenied  StatusCode = "REQUEST_DENIED"
	StatusInvalidRequest StatusCode = "INVALID_REQUEST"
	StatusNotFound       StatusCode = "NOT_FOUND"
	StatusUnknownError   StatusCode = "UNKNOWN_ERROR"
)

var (
	// ErrInvalidParams reports malformed request parameters. It surfaces
	// synchronously, before any network attempt, and is never retried.
	ErrInvalidParams = errors.New("geoapi: invalid request parameters")

	// ErrDecode reports a payload that does not match the declared
	// response shape. Never retried.
	ErrDecode = errors.New("geoapi: malformed response payload")

	// ErrCancelled reports cooperative cancellation of a pending request.
	ErrCancelled = errors.New("geoapi: request cancelled")

	// ErrRateLimited reports that a rate limiter permit could not be
	// acquired within the configured wait. Retried like any transient
	// failure.
	ErrRateLimited = errors.New("geoapi: rate limit permit timed out")

	// ErrClientClosed reports a dispatch attempted after Close.
	ErrClientClosed = errors.New("geoapi: client closed")
)

// APIError is an error reported by the remote service. Whether it is
// terminal or transient depends on the status code.
type APIError struct {
	Status  StatusCode
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("geoapi: remote status %s", e.Status)
	}
	return fmt.Sprintf("geoapi: remote status %s: %s", e.Status, e.Message)
}

// apiErrorFrom maps a wire status string onto the stable enumeration.
// Unrecognised statuses collapse to UNKNOWN_ERROR, keeping the raw status
// in the message.
func apiErrorFrom(status, message string) *APIError {
	switch StatusCode(status) {
	case StatusZeroResults, StatusOverQueryLimit, StatusOverDailyLimit,
		StatusRequestDenied, StatusInvalidRequest, StatusNotFound,
		StatusUnknownError:
		return &APIError{Status: StatusCode(status), Message: message}
	}
	if message == "" {
		message = "unrecognised status " + status
	}
	return &APIError{Status: StatusUnknownError, Message: message}
}

// TransportError wraps a connection-level failure: refused connections,
// timeouts, 5xx responses. Always retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "geoapi: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// RetryBudgetError reports that a request's retry budget was exhausted.
// Last carries the failure observed on the final attempt.
type RetryBudgetError struct {
	Last     error
	Attempts int
	Elapsed  time.Duration
}

func (e *RetryBudgetError) Error() string {
	return fmt.Sprintf("geoapi: retry budget exhausted after %d attempts in %s: %v",
		e.Attempts, e.Elapsed.Round(time.Millisecond), e.Last)
}

func (e *RetryBudgetError) Unwrap() error { return e.Last }

// retryable reports whether a failed attempt may be tried again: transport
// faults, limiter timeouts, and quota or unknown remote statuses. Terminal
// application errors (denied, invalid, not found, zero results) are not.
func retryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var ae *APIError
	if errors.As(err, &ae) {
		switch ae.Status {
		case StatusOverQueryLimit, StatusOverDailyLimit, StatusUnknownError:
			return true
		}
	}
	return false
}
