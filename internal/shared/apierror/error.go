package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/collectionvault/index-engine/internal/shared"
)

// APIError represents a structured API error response
type APIError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Field      string         `json:"field,omitempty"` // For validation errors
	HTTPStatus int            `json:"-"`               // Not serialized
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new API error with the given code, message, and HTTP status
func NewAPIError(code ErrorCode, message string, status int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// NotFound creates a 404 Not Found error
func NotFound(code ErrorCode, entity string) *APIError {
	return &APIError{
		Code:       code,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 Conflict error
func Conflict(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 Bad Request validation error
func ValidationError(code ErrorCode, field, message string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		Field:      field,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Forbidden creates a 403 Forbidden error
func Forbidden(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// Unauthorized creates a 401 Unauthorized error
func Unauthorized(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InternalError creates a 500 Internal Server Error
func InternalError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeInternalError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// BadRequest creates a 400 Bad Request error
func BadRequest(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// WithDetails adds details to the error (chainable)
func (e *APIError) WithDetails(details map[string]any) *APIError {
	e.Details = details
	return e
}

// WithField sets the field for the error (chainable)
func (e *APIError) WithField(field string) *APIError {
	e.Field = field
	return e
}

// ServiceUnavailable creates a 503 error carrying a retryable hint, for
// TransientStoreError/TransientBrokerError per the error handling design.
func ServiceUnavailable(code ErrorCode, message string) *APIError {
	err := &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
	}
	return err.WithDetails(map[string]any{"retryable": true})
}

// FromDomain maps a shared domain error to an APIError per the error
// handling design: ValidationError->400, NotFoundError->404,
// Transient*->503 with retryable hint, everything else->500. Callers that
// know the specific entity/code should translate explicitly instead;
// this is the catch-all used by generic middleware.
func FromDomain(err error) *APIError {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return NotFound(ErrCodeCollectionNotFound, "resource")
	case errors.Is(err, shared.ErrInvalidInput):
		return ValidationError(ErrCodeValidationFailed, "", err.Error())
	case shared.IsTransient(err):
		return ServiceUnavailable(ErrCodeStoreUnavailable, err.Error())
	default:
		return InternalError(err.Error())
	}
}
