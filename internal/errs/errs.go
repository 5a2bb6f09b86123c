// Package errs defines the errors the HTTP layer knows how to render.
//
// Anything that is not an *HTTPError reaching the error responder is
// treated as an internal failure.
package errs

import (
	"net/http"
)

// HTTPError is a failure carrying the status and message sent to the client.
// It serializes to {"message": ...}.
type HTTPError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// New creates an HTTPError with an explicit status.
func New(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
func NewBadRequestError(message string) *HTTPError {
	return New(http.StatusBadRequest, message)
}

// NewInternalServerError creates a 500 HTTPError. An empty message falls
// back to the generic status text.
func NewInternalServerError(message string) *HTTPError {
	if message == "" {
		message = http.StatusText(http.StatusInternalServerError)
	}
	return New(http.StatusInternalServerError, message)
}
