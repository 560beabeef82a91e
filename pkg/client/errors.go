package client

import (
	"errors"
	"fmt"
)

// Configuration errors returned by New.
var (
	// ErrMissingBaseURL is returned when no API base URL is configured.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrMissingToken is returned when no bearer credential is configured.
	ErrMissingToken = errors.New("bearer token is required")
)

// APIError reports a failed page fetch with the context needed to diagnose
// it: the URL that failed, the HTTP status if a response arrived, and the
// underlying cause if not. A traversal that hits an APIError yields it as
// its final element and stops.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pulse API error (%s): %s: %v", e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("pulse API error (%s): %s", e.URL, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}
