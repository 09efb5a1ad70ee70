package domain

import (
	"errors"
	"fmt"
)

var (
	// Request errors
	ErrEmptyQuery       = errors.New("empty search query")
	ErrMissingListingID = errors.New("missing listing id")
	ErrMissingEndpoint  = errors.New("missing form action")

	// Response errors
	ErrHTTPStatus        = errors.New("unexpected http status")
	ErrApplication       = errors.New("server reported failure")
	ErrMalformedResponse = errors.New("malformed response")

	// ErrStale marks a response that was discarded because a later
	// request for the same target already applied its result.
	ErrStale = errors.New("stale response discarded")
)

// StatusError carries the HTTP status of a non-2xx response.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http status %d", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// AppError is a 2xx response whose payload signals a failure.
type AppError struct {
	Op      string
	Message string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server reported failure", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AppError) Unwrap() error {
	return ErrApplication
}
