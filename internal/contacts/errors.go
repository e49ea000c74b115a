package contacts

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound  = errors.New("contact not found")
	ErrInvalidID = errors.New("invalid contact id")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
