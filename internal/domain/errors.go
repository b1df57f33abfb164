// Package domain holds error types shared by the boundary's JSON-API
// surfaces (bench-run storage and query), distinct from the render
// dispatcher's own HTML-facing error kinds in rendertask/renderstage.
package domain

import "errors"

var (
	// ErrAlreadyRunning indicates a benchmark run with this ID is still in
	// progress and cannot be overwritten.
	ErrAlreadyRunning = errors.New("benchmark run already in progress")

	// ErrInvalidInput indicates a malformed request to a JSON API endpoint.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSLAViolation indicates a completed run's latency or error-rate
	// exceeded the threshold recorded against it.
	ErrSLAViolation = errors.New("SLA violation")
)

// ValidationError represents one field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError represents a lookup miss for a named resource and ID.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

// NewNotFoundError constructs a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}
