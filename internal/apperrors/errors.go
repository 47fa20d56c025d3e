package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
)

// AppError carries a public message next to one of the sentinel errors.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Err: ErrUnauthorized}
}

func Validation(msg string) *AppError {
	return &AppError{Code: "VALIDATION", Message: msg, Err: ErrValidation}
}

func Validationf(format string, args ...any) *AppError {
	return Validation(fmt.Sprintf(format, args...))
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

// Unavailable marks a feature the server was started without.
func Unavailable(msg string) *AppError {
	return &AppError{Code: "UNAVAILABLE", Message: msg, Err: ErrUnavailable}
}

// HTTPStatus maps an error to a status code and a message safe to show to clients.
// Unknown errors become 500 with a generic message.
func HTTPStatus(err error) (int, string) {
	var appErr *AppError
	msg := err.Error()
	if errors.As(err, &appErr) {
		msg = appErr.Error()
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, msg
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, msg
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, msg
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, msg
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, msg
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
