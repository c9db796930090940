package services

import "fmt"

// ValidationError rejects a request before any write happens. Handlers
// map it to 422, matching the API contract.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// ConflictError signals that the requested write collides with an
// existing row (duplicate follow, duplicate username). Handlers map it
// to 409.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return e.Detail
}

func conflictErrorf(format string, args ...any) *ConflictError {
	return &ConflictError{Detail: fmt.Sprintf(format, args...)}
}
