package batches

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// System defines the batch lifecycle contract. Every operation runs in a
// single database transaction.
type System interface {
	Handler() *Handler

	// Enqueue creates a PENDING batch for contactID.
	Enqueue(ctx context.Context, contactID uuid.UUID) (*Batch, error)
	// ClaimNext moves the oldest PENDING batch to PROCESSING and returns it,
	// or returns nil when the queue is empty.
	ClaimNext(ctx context.Context) (*Batch, error)
	// Complete records a successful run on a PROCESSING batch.
	Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Batch, error)
	// Fail records a failed run on a PROCESSING batch.
	Fail(ctx context.Context, id uuid.UUID, cmd FailCommand) (*Batch, error)
	// Reprocess resets a COMPLETED or FAILED batch to PENDING, discarding its results.
	Reprocess(ctx context.Context, id uuid.UUID) (*Batch, error)
	// PurgeAll deletes every batch with its messages and suggestions.
	PurgeAll(ctx context.Context) (*PurgeResult, error)
	// SweepStale fails PROCESSING batches claimed more than maxAge ago.
	SweepStale(ctx context.Context, maxAge time.Duration) (int, error)

	Find(ctx context.Context, id uuid.UUID) (*Batch, error)
	Review(ctx context.Context, suggestionID uuid.UUID, cmd ReviewCommand) (*SuggestedUpdate, error)
}
