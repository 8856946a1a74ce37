package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedPayload is returned when an upstream document does not have the
// expected shape.
var ErrMalformedPayload = errors.New("malformed leaderboard payload")

// RedirectError is returned when upstream answers with an HTML page instead of
// JSON. This happens when the session cookie is expired or invalid and the
// request lands on the login page.
type RedirectError struct {
	URL string
}

func (e *RedirectError) Error() string {
	return "REDIRECT_ERROR: received HTML instead of JSON - likely redirected to login page"
}

// TransportError is returned for network failures and non-2xx responses.
// StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Header     http.Header
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream error (HTTP %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream error (HTTP %d): %s", e.StatusCode, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
