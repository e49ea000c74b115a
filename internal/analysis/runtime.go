package analysis

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/contacts"
	"github.com/JaimeStill/outreach/internal/messages"
)

// Directory is the contact lookup the load node needs. contacts.System
// satisfies it.
type Directory interface {
	Find(ctx context.Context, id uuid.UUID) (*contacts.Contact, error)
	Fields(ctx context.Context) ([]contacts.FieldDefinition, error)
}

// Runtime bundles the dependencies that graph nodes require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Generator    Generator
	Contacts     Directory
	Messages     messages.Source
	MessageLimit int
	Logger       *slog.Logger
}

// Analyze runs Execute against rt.
func (rt *Runtime) Analyze(ctx context.Context, batch *batches.Batch) (*Result, error) {
	return Execute(ctx, rt, batch)
}
