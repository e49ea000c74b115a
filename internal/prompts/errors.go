package prompts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/outreach/pkg/validation"
)

var (
	ErrNotFound     = errors.New("prompt not found")
	ErrDuplicate    = errors.New("prompt name already exists")
	ErrInvalidID    = errors.New("invalid prompt id")
	ErrInvalidStage = errors.New("unknown pipeline stage")
)

var statuses = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrDuplicate, http.StatusConflict},
	{ErrInvalidID, http.StatusBadRequest},
	{ErrInvalidStage, http.StatusBadRequest},
	{validation.ErrInvalid, http.StatusBadRequest},
}

func MapHTTPStatus(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
