// Package admin provides read-only views over analysis batches for
// operators, plus reprocess and purge delegated to the batch lifecycle.
package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/messages"
)

// Recent batch listing bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// QueueCounts holds the number of batches in each non-failed status.
type QueueCounts struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
}

// WindowCounts holds terminal outcomes within a trailing window.
type WindowCounts struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Summary aggregates queue state for the dashboard.
type Summary struct {
	Queue              QueueCounts  `json:"queue"`
	Last24Hours        WindowCounts `json:"last24Hours"`
	PendingSuggestions int          `json:"pendingSuggestions"`
}

// SuggestionSummary is the table-row view of a suggested update.
type SuggestionSummary struct {
	ID                uuid.UUID            `json:"id"`
	Status            batches.ReviewStatus `json:"status"`
	ChangeCount       int                  `json:"changeCount"`
	HasNotableUpdates bool                 `json:"hasNotableUpdates"`
}

// RecentBatch is one row of the recent batch listing.
type RecentBatch struct {
	ID           uuid.UUID           `json:"id"`
	ContactID    uuid.UUID           `json:"contactId"`
	ContactName  string              `json:"contactName"`
	Status       batches.Status      `json:"status"`
	MessageCount int                 `json:"messageCount"`
	Attempts     int                 `json:"attempts"`
	ErrorMessage *string             `json:"errorMessage"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Suggestions  []SuggestionSummary `json:"suggestions"`
}

// BatchDetail is the full record of one batch with everything it produced.
type BatchDetail struct {
	batches.Batch
	ContactName string                    `json:"contactName"`
	Messages    []messages.Message        `json:"messages"`
	Suggestions []batches.SuggestedUpdate `json:"suggestions"`
}

// ClampLimit applies the listing default and bounds. Zero selects the
// default; anything else outside [1, MaxLimit] is clamped.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
