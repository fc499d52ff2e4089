package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrResponseTooLarge is wrapped in a TransportError when a body exceeds the read limit.
var ErrResponseTooLarge = errors.New("response body exceeds limit")

// TransportError is a network or connection failure: no usable HTTP response arrived.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("zoom: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is a response with status >= 400. Body holds the raw response text.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("zoom: %s %s returned %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("zoom: %s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// PreconditionError is caller misuse detected before any request is sent.
type PreconditionError struct {
	Op     string
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zoom: %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("zoom: %s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool     { return StatusCode(err) == http.StatusNotFound }
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }
