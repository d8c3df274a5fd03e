package utils

import "net/http"

// AppError carries an HTTP status alongside a client-safe message.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

// NewUpstreamError reports a failure of the generation or retrieval backend.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Message: message, Err: err}
}

func NewUnavailableError(message string) *AppError {
	return &AppError{StatusCode: http.StatusServiceUnavailable, Message: message}
}
