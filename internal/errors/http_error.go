package errors

import (
	"errors"
	"net/http"
)

// HTTPError pairs a client-facing message with the status it is served with.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Write sends the error to the client as a plain-text response.
func (e *HTTPError) Write(w http.ResponseWriter) {
	http.Error(w, e.Message, e.Code)
}

func New(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

func BadRequest(message string) *HTTPError {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *HTTPError {
	return New(http.StatusUnauthorized, message)
}

func NotFound(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

func Internal(message string) *HTTPError {
	return New(http.StatusInternalServerError, message)
}

// ForStore maps a store error onto a response: the notFound sentinel becomes
// a 404, anything else stays a generic 500 so SQL details never leak out.
func ForStore(err, notFound error) *HTTPError {
	if errors.Is(err, notFound) {
		return NotFound("Not found")
	}
	return Internal("Database error")
}
