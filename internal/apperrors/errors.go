// Package apperrors defines the error taxonomy shared by services and controllers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	TypeValidation   ErrorType = "validation_error"
	TypeNotFound     ErrorType = "not_found"
	TypeConflict     ErrorType = "conflict"
	TypeUnauthorized ErrorType = "unauthorized"
	TypeForbidden    ErrorType = "forbidden"
	TypeInternal     ErrorType = "internal_error"
)

// AppError carries an HTTP status alongside a user-visible message.
type AppError struct {
	Type    ErrorType
	Message string
	Code    int
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

func newError(t ErrorType, code int, format string, args ...interface{}) *AppError {
	return &AppError{Type: t, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *AppError {
	return newError(TypeValidation, http.StatusBadRequest, format, args...)
}

func NotFound(format string, args ...interface{}) *AppError {
	return newError(TypeNotFound, http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *AppError {
	return newError(TypeConflict, http.StatusConflict, format, args...)
}

func Unauthorized(format string, args ...interface{}) *AppError {
	return newError(TypeUnauthorized, http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *AppError {
	return newError(TypeForbidden, http.StatusForbidden, format, args...)
}

// Internal wraps an unexpected failure, keeping the cause for errors.Is/As.
func Internal(cause error, message string) *AppError {
	return &AppError{Type: TypeInternal, Code: http.StatusInternalServerError, Message: message, cause: cause}
}

// StatusCode maps any error to the HTTP status it should surface as.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Is reports whether err is an AppError of the given type.
func Is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}
