package admin

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/outreach/internal/batches"
)

// Domain errors for admin operations.
var (
	ErrNotFound     = errors.New("batch not found")
	ErrInvalidLimit = errors.New("limit must be an integer")
)

// MapHTTPStatus maps admin and delegated batch errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidLimit):
		return http.StatusBadRequest
	default:
		return batches.MapHTTPStatus(err)
	}
}
