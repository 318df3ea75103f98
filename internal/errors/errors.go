package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is an error that knows the HTTP status it should be reported with.
// Message is what the client sees in {"error": ...}.
type APIError struct {
	Code    ErrorCode
	Message string
	Status  int
	// Extra is merged into the JSON error body
	Extra map[string]any
	cause error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// With attaches an extra field to the error body
func (e *APIError) With(key string, value any) *APIError {
	if e.Extra == nil {
		e.Extra = make(map[string]any)
	}
	e.Extra[key] = value
	return e
}

// Wrap records the underlying cause for logging without changing the client message
func (e *APIError) Wrap(err error) *APIError {
	e.cause = err
	return e
}

func newError(code ErrorCode, status int, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: status}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, http.StatusBadRequest, message)
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return newError(ErrUnauthorized, http.StatusUnauthorized, message)
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return newError(ErrForbidden, http.StatusForbidden, message)
}

// NotFound creates a NOT_FOUND error
func NotFound(message string) *APIError {
	return newError(ErrNotFound, http.StatusNotFound, message)
}

// Conflict creates a CONFLICT error
func Conflict(message string) *APIError {
	return newError(ErrConflict, http.StatusConflict, message)
}

// PayloadTooLarge creates a PAYLOAD_TOO_LARGE error
func PayloadTooLarge(message string) *APIError {
	return newError(ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, message)
}

// UnsupportedMediaType creates an UNSUPPORTED_MEDIA_TYPE error
func UnsupportedMediaType(message string) *APIError {
	return newError(ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, message)
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return newError(ErrRateLimited, http.StatusTooManyRequests, message)
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return newError(ErrInternalError, http.StatusInternalServerError, message)
}

// As extracts an *APIError from err. Anything else is reported as a 500 carrying
// the error text so misconfiguration is diagnosable from the response.
func As(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return InternalError(err.Error()).Wrap(err)
}

// IsSchemaMissing reports whether a datastore error means a table or column has not
// been migrated yet.
func IsSchemaMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "no such column") || strings.Contains(msg, "undefined_table")
}

// SchemaMissing is returned when a backing table has not been created.
func SchemaMissing(table string, err error) *APIError {
	return InternalError(fmt.Sprintf("%s schema missing. Run database migrations first.", table)).Wrap(err)
}
