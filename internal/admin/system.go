package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/internal/batches"
)

// Lifecycle is the subset of batch mutations the admin surface may trigger.
// batches.System satisfies it.
type Lifecycle interface {
	Reprocess(ctx context.Context, id uuid.UUID) (*batches.Batch, error)
	PurgeAll(ctx context.Context) (*batches.PurgeResult, error)
}

// System defines the admin query contract.
type System interface {
	Handler() *Handler

	Summary(ctx context.Context) (*Summary, error)
	ListRecent(ctx context.Context, limit int, status *batches.Status) ([]RecentBatch, error)
	Detail(ctx context.Context, id uuid.UUID) (*BatchDetail, error)

	Reprocess(ctx context.Context, id uuid.UUID) (*batches.Batch, error)
	PurgeAll(ctx context.Context) (*batches.PurgeResult, error)
}
