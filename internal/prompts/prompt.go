// Package prompts manages named instruction overrides for the analysis stage.
// At most one prompt per stage is active; without one the built-in
// instructions apply.
package prompts

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is a named instruction override for a stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateCommand is the body of create requests. Stage is checked on decode.
type CreateCommand struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Stage        Stage   `json:"stage" validate:"required"`
	Instructions string  `json:"instructions" validate:"required,max=20000"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateCommand replaces every editable field; it does not change Active.
type UpdateCommand CreateCommand
