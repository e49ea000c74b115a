package messages

import (
	"errors"
	"net/http"
)

var (
	// ErrUnavailable indicates the message store could not be opened or queried.
	ErrUnavailable = errors.New("message store unavailable")
	// ErrInvalidPhone indicates a phone number with no digits.
	ErrInvalidPhone = errors.New("phone number must contain digits")
	// ErrInvalidSnapshot indicates an uploaded file is not a usable SQLite message store.
	ErrInvalidSnapshot = errors.New("invalid message store snapshot")
	// ErrInvalidLimit indicates a malformed limit query parameter.
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	// ErrFileTooLarge indicates the snapshot upload exceeded the size limit.
	ErrFileTooLarge = errors.New("snapshot exceeds maximum upload size")
)

// MapHTTPStatus maps message source errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrInvalidSnapshot),
		errors.Is(err, ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
