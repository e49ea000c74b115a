package batches

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the batch does not exist.
	ErrNotFound = errors.New("batch not found")
	// ErrSuggestionNotFound indicates the suggested update does not exist.
	ErrSuggestionNotFound = errors.New("suggestion not found")
	// ErrInvalidContact indicates the referenced contact does not exist.
	ErrInvalidContact = errors.New("contact does not exist")
	// ErrInvalidTransition indicates the batch is not in a state that allows the operation.
	ErrInvalidTransition = errors.New("invalid batch status transition")
	// ErrInvalidSuggestion indicates a suggestion payload failed validation.
	ErrInvalidSuggestion = errors.New("invalid suggestion")
	// ErrInvalidReview indicates the suggestion has already been reviewed.
	ErrInvalidReview = errors.New("suggestion is not pending review")
	// ErrInvalidStatus indicates an unrecognized batch status value.
	ErrInvalidStatus = errors.New("invalid batch status")
	// ErrInvalidRequest indicates a malformed request body or identifier.
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus maps batch domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSuggestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidContact):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInvalidReview):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSuggestion),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
