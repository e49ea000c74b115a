package contacts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/pkg/pagination"
)

// System defines the read-only contract for contact lookups.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Contact], error)

	Find(ctx context.Context, id uuid.UUID) (*Contact, error)
	Fields(ctx context.Context) ([]FieldDefinition, error)
}
