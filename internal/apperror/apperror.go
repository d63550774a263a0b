// Package apperror defines the error kinds shared by the service and HTTP layers.
//
// ERROR TAXONOMY:
// Services return one of the sentinel kinds below wrapped in an *AppError.
// The handler package maps each kind to an HTTP status:
//
//	ErrValidation   → 400  missing or malformed input
//	ErrUnauthorized → 401  bad credentials, missing or invalid session token
//	ErrForbidden    → 403  authenticated but not allowed
//	ErrNotFound     → 404  unknown id or slug
//	ErrConflict     → 409  uniqueness violation
//	ErrTooLarge     → 413  upload over the configured size limit
//
// Anything that is not an *AppError is a storage or database failure (500).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooLarge     = errors.New("too large")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundBySlug is NotFound for slug lookups.
func NotFoundBySlug(resource, slug string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with slug %s", resource, slug),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for failed authentication.
// The message must never reveal which credential was wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// TooLarge returns an AppError for payloads over a size limit.
func TooLarge(field string, limit int64) *AppError {
	return &AppError{
		Err:     ErrTooLarge,
		Message: fmt.Sprintf("%s exceeds the maximum size of %d bytes", field, limit),
		Field:   field,
	}
}
