package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/pkg/pagination"
)

// System manages prompt overrides and resolves the text the analysis stage
// sends to the model.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error)
	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Activate makes id the live override for its stage, deactivating any
	// other in the same transaction.
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Instructions returns the live override for stage, or the built-in text
	// when none is active.
	Instructions(ctx context.Context, stage Stage) (string, error)
	// Spec returns the fixed output contract for stage. It cannot be overridden.
	Spec(ctx context.Context, stage Stage) (string, error)
}
