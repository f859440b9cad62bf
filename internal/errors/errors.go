package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPostNotFound is returned when a post is not found.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment is not found.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrForbidden is returned when the caller does not own the resource it mutates.
	ErrForbidden = errors.New("not the owner of this resource")
	// ErrInvalidToken is returned for any token verification failure. Expired and
	// malformed tokens are deliberately not distinguished to callers.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to the response envelope.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Ownership failures map to
// 401 together with token failures; only unknown errors become a 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
