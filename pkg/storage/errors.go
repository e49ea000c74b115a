package storage

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrInvalidMaxResults indicates a malformed or non-positive maxResults value.
	ErrInvalidMaxResults = errors.New("maxResults must be a positive integer")
)

// MaxListCap is the service-side ceiling on a single list page.
const MaxListCap int32 = 5000

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrEmptyKey) || errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrInvalidMaxResults) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ParseMaxResults parses a maxResults query value, falling back to def when empty
// and capping the result at def.
func ParseMaxResults(raw string, def int32) (int32, error) {
	if raw == "" {
		return def, nil
	}

	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxResults, raw)
	}

	return min(int32(n), def), nil
}
