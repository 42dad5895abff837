package gridapi

import (
	"errors"
	"fmt"
)

// Sentinel errors for gateway operations.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest indicates the gateway rejected the request as invalid.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates the token was missing, expired or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrGatewayUnavailable indicates the gateway could not be reached or
	// answered with a server-side failure.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrThrottled indicates the gateway rate limited the request.
	ErrThrottled = errors.New("request throttled")
)

// APIError wraps a failed gateway call with enough context to diagnose it.
type APIError struct {
	// Op is the operation that failed (e.g., "GetStatus", "Cancel").
	Op string

	// Resource identifies what was being operated on (job UUID, app id...).
	Resource string

	// StatusCode is the HTTP status, zero when the call never completed.
	StatusCode int

	// Body is the raw response body, if one was read.
	Body string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("gridapi %s %s: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("gridapi %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// SubmissionError is returned when the gateway rejects a job request.
// It keeps the original request and the raw response body for diagnostics.
type SubmissionError struct {
	Request    *JobRequest
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	name := ""
	if e.Request != nil {
		name = e.Request.Name
	}
	if e.Body != "" {
		return fmt.Sprintf("submit job %q: %v: %s", name, e.Err, e.Body)
	}
	return fmt.Sprintf("submit job %q: %v", name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBadRequest reports whether err indicates the gateway rejected the call
// as invalid (for Cancel this means the job is already terminal).
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsUnauthorized reports whether err indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsGatewayUnavailable reports whether err indicates the gateway was
// unreachable or failing.
func IsGatewayUnavailable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// IsThrottled reports whether err indicates the request was rate limited.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}
