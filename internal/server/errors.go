package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
)

// AppError carries the HTTP status of a failed request.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Newf builds an AppError around a sentinel.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to a response status.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internalerr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, internalerr.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, internalerr.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, internalerr.ErrInvalidConfig), errors.Is(err, internalerr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
