// Package errors defines the application error taxonomy shared by the
// service and HTTP layers.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeForeignKey indicates a foreign key constraint violation.
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeUnauthenticated indicates there is no usable session.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeForbidden indicates the caller may not perform the action.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeUnavailable indicates a dependency could not be reached.
	ErrCodeUnavailable ErrorCode = "unavailable"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError is a structured application error with a code, a user-facing
// message and an optional cause. It works with errors.Is and errors.As.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending input for validation and conflict errors.
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newf(code ErrorCode, format string, args []any) *AppError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Code: code, Message: msg}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError { return newf(ErrCodeNotFound, message, nil) }

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError { return newf(ErrCodeNotFound, format, args) }

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError { return newf(ErrCodeConflict, message, nil) }

// Validation creates a new Validation error.
func Validation(message string) *AppError { return newf(ErrCodeValidation, message, nil) }

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError { return newf(ErrCodeValidation, format, args) }

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Forbidden creates a new Forbidden error.
func Forbidden(message string) *AppError { return newf(ErrCodeForbidden, message, nil) }

// Internal creates a new Internal error.
func Internal(message string) *AppError { return newf(ErrCodeInternal, message, nil) }

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// FromAccess converts an access-policy denial into an AppError. Other
// errors are returned unchanged.
func FromAccess(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, access.ErrUnauthenticated):
		return Wrap(err, ErrCodeUnauthenticated, "Please sign in to continue.")
	case errors.Is(err, access.ErrNoRole):
		return Wrap(err, ErrCodeForbidden, "Your account has no role yet. Complete registration to continue.")
	case errors.Is(err, access.ErrLookupFailure):
		return Wrap(err, ErrCodeUnavailable, "Your access could not be verified. Please try again.")
	case errors.Is(err, access.ErrNotAssigned):
		return Wrap(err, ErrCodeForbidden, "You are not authorized to view this case.")
	case errors.Is(err, access.ErrNotOwner):
		return Wrap(err, ErrCodeForbidden, "You can only access your own reports.")
	case errors.Is(err, access.ErrReadOnly):
		return Wrap(err, ErrCodeForbidden, "You do not have permission to change this case.")
	case errors.Is(err, access.ErrForbidden):
		return Wrap(err, ErrCodeForbidden, "You are not authorized to view this case.")
	default:
		return err
	}
}

// HTTPStatus maps an error's code to an HTTP status. Errors without a code map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeForeignKey:
		return http.StatusConflict
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return GetCode(err) == ErrCodeNotFound }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return GetCode(err) == ErrCodeConflict }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return GetCode(err) == ErrCodeValidation }

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool { return GetCode(err) == ErrCodeForbidden }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// Message returns the user-facing message of an AppError or fallback.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
