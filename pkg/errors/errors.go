package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeDuplicateID   ErrorType = "DUPLICATE_ID"
	ErrorTypeDanglingEdge  ErrorType = "DANGLING_EDGE"
	ErrorTypeUnknownTarget ErrorType = "UNKNOWN_TARGET"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeInternal      ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewDuplicateID signals insertion of an already-present identifier
func NewDuplicateID(kind, id string) error {
	return &AppError{
		Type:    ErrorTypeDuplicateID,
		Message: fmt.Sprintf("%s %q already exists", kind, id),
	}
}

// NewDanglingEdge signals an edge referencing a node absent from the store
func NewDanglingEdge(edgeID, nodeID string) error {
	return &AppError{
		Type:    ErrorTypeDanglingEdge,
		Message: fmt.Sprintf("edge %q references missing node %q", edgeID, nodeID),
	}
}

// NewUnknownTarget signals a query against a nonexistent node or edge id
func NewUnknownTarget(kind, id string) error {
	return &AppError{
		Type:    ErrorTypeUnknownTarget,
		Message: fmt.Sprintf("unknown %s %q", kind, id),
	}
}

// NewUnauthorized signals a mutation attempted by a non-owner
func NewUnauthorized(message string) error {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// Type checking functions

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsDuplicateID checks if an error is a duplicate identifier error
func IsDuplicateID(err error) bool { return isType(err, ErrorTypeDuplicateID) }

// IsDanglingEdge checks if an error is a dangling edge error
func IsDanglingEdge(err error) bool { return isType(err, ErrorTypeDanglingEdge) }

// IsUnknownTarget checks if an error is an unknown target error
func IsUnknownTarget(err error) bool { return isType(err, ErrorTypeUnknownTarget) }

// IsUnauthorized checks if an error is an authorization error
func IsUnauthorized(err error) bool { return isType(err, ErrorTypeUnauthorized) }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool { return isType(err, ErrorTypeInternal) }
