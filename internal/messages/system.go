package messages

import (
	"context"
	"io"

	"github.com/JaimeStill/outreach/pkg/lifecycle"
)

// System is the message store: a Source plus snapshot management.
type System interface {
	Source

	Handler() *Handler

	// Start registers the snapshot sync on startup and closes the store on shutdown.
	Start(lc *lifecycle.Coordinator) error
	// Replace validates r as a message store, publishes it to blob storage when a
	// snapshot key is configured, and swaps it in as the active store.
	Replace(ctx context.Context, r io.Reader) (*Snapshot, error)
}
