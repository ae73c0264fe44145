package errors

import (
	"fmt"
	"net/http"
)

// ErrorType is the category of an AppError. It decides the HTTP status and
// the process exit code an error surfaces as.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypePermission
	ErrorTypeUnauthenticated
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeDatabase:
		return "database"
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypePermission:
		return "forbidden"
	case ErrorTypeUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// HTTPStatus returns the response status for the category.
func (et ErrorType) HTTPStatus() int {
	switch et {
	case ErrorTypeValidation, ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case ErrorTypePermission:
		return http.StatusForbidden
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// CallerFault reports whether the error was caused by the request rather
// than by the system serving it.
func (et ErrorType) CallerFault() bool {
	return et.HTTPStatus() < http.StatusInternalServerError
}

// AppError is a categorized error. Context carries the identifiers the
// renderers need, such as the resource of a not-found or the field of an
// invalid input.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]any
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// GetContext retrieves context information from the error
func (e *AppError) GetContext(key string) (any, bool) {
	if e.Context == nil {
		return nil, false
	}
	value, exists := e.Context[key]
	return value, exists
}

// ContextString returns a string context value, or "" when absent.
func (e *AppError) ContextString(key string) string {
	value, _ := e.GetContext(key)
	s, _ := value.(string)
	return s
}
