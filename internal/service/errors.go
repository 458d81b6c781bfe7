package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/stargazer/internal/domain"
)

// Service errors - sentinel errors callers check with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. The API layer maps service errors to HTTP status codes
var (
	// ErrInvalidAnswer indicates the answer event failed validation.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrUnknownLesson indicates the lesson slug is not in the catalog.
	// API layer should map this to HTTP 404 Not Found.
	ErrUnknownLesson = domain.ErrUnknownLesson

	// ErrCorruptProgress indicates the stored snapshot could not be decoded.
	// The stored value is left untouched.
	ErrCorruptProgress = errors.New("stored progress is unreadable")

	// ErrRetriesExhausted indicates every attempt lost the revision race.
	// API layer should map this to HTTP 409 Conflict.
	ErrRetriesExhausted = errors.New("progress update retries exhausted")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("learning service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("learning service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// It returns known sentinel errors directly without wrapping.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{ErrInvalidAnswer, ErrUnknownLesson, ErrRetriesExhausted} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
