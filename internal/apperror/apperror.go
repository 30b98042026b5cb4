// Package apperror defines the error kinds shared by the service layer
// and their mapping to HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an application error.
type Kind int

const (
	// KindInternal is an unexpected server-side failure.
	KindInternal Kind = iota
	// KindNotFound means the entity is absent or not visible to the caller.
	KindNotFound
	// KindValidation means a request field violated a constraint.
	KindValidation
	// KindUnauthenticated means the token is missing, invalid or expired.
	KindUnauthenticated
	// KindForbidden means the token is valid but the role is insufficient.
	KindForbidden
	// KindConflict means a uniqueness constraint was violated.
	KindConflict
	// KindUnavailable means a backend could not be reached.
	KindUnavailable
	// KindDatabase is a persistence failure.
	KindDatabase
)

// AppError carries an error kind, a user-facing message and, for
// validation failures, per-field messages.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError of an arbitrary kind.
func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// NewNotFound creates a not-found error.
func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewValidation creates a validation error with per-field messages.
func NewValidation(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// NewUnauthenticated creates an authentication error.
func NewUnauthenticated(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

// NewForbidden creates an authorization error.
func NewForbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// NewConflict creates a uniqueness-conflict error.
func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewUnavailable creates a backend-unreachable error.
func NewUnavailable(message string, err error) *AppError {
	return &AppError{Kind: KindUnavailable, Message: message, Err: err}
}

// NewDatabase creates a persistence error.
func NewDatabase(message string, err error) *AppError {
	return &AppError{Kind: KindDatabase, Message: message, Err: err}
}

// NewInternal creates an unexpected-failure error.
func NewInternal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

func isKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsUnauthenticated reports whether err is an authentication error.
func IsUnauthenticated(err error) bool { return isKind(err, KindUnauthenticated) }

// IsForbidden reports whether err is an authorization error.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return isKind(err, KindConflict) }
