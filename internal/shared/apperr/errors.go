// Package apperr holds the error kinds shared by the search and advisor
// controllers. Each kind is a concrete type so callers can branch with errors.As
// while keeping the wrapped cause for logging.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed user input. No upstream call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TransportError reports a failed call to an upstream service.
type TransportError struct {
	Service    string
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: http status %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s %s: http status %d", e.Service, e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError.
func Transport(service, op string, err error) error {
	return &TransportError{Service: service, Op: op, Err: err}
}

// EmptyResultError reports a well-formed upstream response that carried no data.
type EmptyResultError struct {
	Service string
	Op      string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s %s: empty result", e.Service, e.Op)
}

// EmptyResult builds an EmptyResultError.
func EmptyResult(service, op string) error {
	return &EmptyResultError{Service: service, Op: op}
}

// UpstreamFormatError reports an upstream reply that could not be parsed.
// Excerpt holds a truncated copy of the offending text.
type UpstreamFormatError struct {
	Excerpt string
	Err     error
}

func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("invalid JSON response from text generator: %s", e.Excerpt)
}

func (e *UpstreamFormatError) Unwrap() error { return e.Err }

// IncompleteResponseError reports a parsed reply that lacks required sections.
type IncompleteResponseError struct {
	Missing []string
}

func (e *IncompleteResponseError) Error() string {
	return fmt.Sprintf("incomplete response from text generator: missing %v", e.Missing)
}

// InvalidRoadmapError reports a roadmap graph that fails structural checks.
type InvalidRoadmapError struct {
	Problems []string
}

func (e *InvalidRoadmapError) Error() string {
	return fmt.Sprintf("invalid roadmap graph: %v", e.Problems)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// IsEmptyResult reports whether err is an EmptyResultError.
func IsEmptyResult(err error) bool {
	var e *EmptyResultError
	return errors.As(err, &e)
}

// IsUpstreamContent reports whether err describes unusable generated content.
func IsUpstreamContent(err error) bool {
	var (
		format     *UpstreamFormatError
		incomplete *IncompleteResponseError
		roadmap    *InvalidRoadmapError
	)
	return errors.As(err, &format) || errors.As(err, &incomplete) || errors.As(err, &roadmap)
}
