package errors

import (
	"errors"
	"fmt"
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
	// ErrCodeAuth indicates an identity operation failed (bad credentials, invalid token).
	ErrCodeAuth ErrorCode = "auth"
	// ErrCodeFetch indicates an upstream metadata fetch failed.
	ErrCodeFetch ErrorCode = "fetch"
	// ErrCodeStore indicates a persistence operation failed.
	ErrCodeStore ErrorCode = "store"
	// ErrCodeConfig indicates required configuration is missing or invalid.
	ErrCodeConfig ErrorCode = "config"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message, safe to surface in the UI
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
	// Hint carries optional recovery guidance shown alongside Message
	// (e.g., the access code length after a failed gate attempt).
	Hint string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Auth creates a new Auth error.
func Auth(message string) *AppError {
	return &AppError{Code: ErrCodeAuth, Message: message}
}

// AuthHint creates a new Auth error carrying a recovery hint.
func AuthHint(message, hint string) *AppError {
	return &AppError{Code: ErrCodeAuth, Message: message, Hint: hint}
}

// Fetch creates a new Fetch error.
func Fetch(message string) *AppError {
	return &AppError{Code: ErrCodeFetch, Message: message}
}

// Fetchf creates a new Fetch error with formatted message.
func Fetchf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeFetch, Message: fmt.Sprintf(format, args...)}
}

// Store creates a new Store error.
func Store(message string) *AppError {
	return &AppError{Code: ErrCodeStore, Message: message}
}

// Config creates a new Config error.
func Config(message string) *AppError {
	return &AppError{Code: ErrCodeConfig, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

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

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsAuth checks if an error is an Auth error.
func IsAuth(err error) bool { return isCode(err, ErrCodeAuth) }

// IsFetch checks if an error is a Fetch error.
func IsFetch(err error) bool { return isCode(err, ErrCodeFetch) }

// IsStore checks if an error is a Store error.
func IsStore(err error) bool { return isCode(err, ErrCodeStore) }

// IsConfig checks if an error is a Config error.
func IsConfig(err error) bool { return isCode(err, ErrCodeConfig) }

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

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

// GetHint returns the Hint from an error, or empty string when absent.
func GetHint(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Hint
	}
	return ""
}
