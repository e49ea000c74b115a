// Package batches owns the analysis batch queue: enqueueing contacts for
// analysis, claiming work, recording outcomes, reprocessing, purging, and
// reviewing the suggestions a completed batch produced.
package batches

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/internal/messages"
)

// NotableConfidence is the confidence at or above which a suggestion is notable.
const NotableConfidence = 0.7

// Batch is one unit of analysis work for one contact.
type Batch struct {
	ID                  uuid.UUID  `json:"id"`
	ContactID           uuid.UUID  `json:"contactId"`
	Status              Status     `json:"status"`
	MessageCount        int        `json:"messageCount"`
	Attempts            int        `json:"attempts"`
	ClaimedAt           *time.Time `json:"claimedAt"`
	ErrorMessage        *string    `json:"errorMessage"`
	LLMPrompt           *string    `json:"llmPrompt"`
	LLMResponse         *string    `json:"llmResponse"`
	ConversationSnippet *string    `json:"conversationSnippet"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// FieldSuggestion proposes a value for one custom field.
type FieldSuggestion struct {
	FieldID        string  `json:"fieldId"`
	FieldName      string  `json:"fieldName"`
	SuggestedValue string  `json:"suggestedValue"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// TagSuggestion proposes a tag to add to the contact.
type TagSuggestion struct {
	TagName    string  `json:"tagName"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SuggestionSet is the structured payload stored on a suggested update.
type SuggestionSet struct {
	FieldSuggestions []FieldSuggestion `json:"fieldSuggestions"`
	TagSuggestions   []TagSuggestion   `json:"tagSuggestions"`
}

// ChangeCount is the total number of field and tag suggestions.
func (s SuggestionSet) ChangeCount() int {
	return len(s.FieldSuggestions) + len(s.TagSuggestions)
}

// HasNotable reports whether any suggestion reaches NotableConfidence.
func (s SuggestionSet) HasNotable() bool {
	for _, f := range s.FieldSuggestions {
		if f.Confidence >= NotableConfidence {
			return true
		}
	}
	for _, t := range s.TagSuggestions {
		if t.Confidence >= NotableConfidence {
			return true
		}
	}
	return false
}

// Validate checks identifiers are present and every confidence lies in [0, 1].
func (s SuggestionSet) Validate() error {
	for i, f := range s.FieldSuggestions {
		if strings.TrimSpace(f.FieldID) == "" {
			return fmt.Errorf("%w: field suggestion %d has no fieldId", ErrInvalidSuggestion, i)
		}
		if !validConfidence(f.Confidence) {
			return fmt.Errorf("%w: field %s confidence %v outside [0,1]", ErrInvalidSuggestion, f.FieldID, f.Confidence)
		}
	}
	for i, t := range s.TagSuggestions {
		if strings.TrimSpace(t.TagName) == "" {
			return fmt.Errorf("%w: tag suggestion %d has no tagName", ErrInvalidSuggestion, i)
		}
		if !validConfidence(t.Confidence) {
			return fmt.Errorf("%w: tag %s confidence %v outside [0,1]", ErrInvalidSuggestion, t.TagName, t.Confidence)
		}
	}
	return nil
}

func validConfidence(c float64) bool {
	return !math.IsNaN(c) && c >= 0 && c <= 1
}

// SuggestedUpdate is the reviewable output of one completed batch.
type SuggestedUpdate struct {
	ID                uuid.UUID     `json:"id"`
	BatchID           uuid.UUID     `json:"batchId"`
	Status            ReviewStatus  `json:"status"`
	SuggestedChanges  SuggestionSet `json:"suggestedChanges"`
	ChangeCount       int           `json:"changeCount"`
	HasNotableUpdates bool          `json:"hasNotableUpdates"`
	ReviewedAt        *time.Time    `json:"reviewedAt"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// CompleteCommand carries the results of a successful generation run.
type CompleteCommand struct {
	Prompt      string
	RawResponse string
	Snippet     string
	Messages    []messages.Message
	Suggestions SuggestionSet
}

// FailCommand is the outcome of a failed run. Prompt and RawResponse are
// set when the model answered but its output was unusable.
type FailCommand struct {
	Message     string
	Prompt      string
	RawResponse string
}

// EnqueueCommand is the request body for enqueueing a contact.
type EnqueueCommand struct {
	ContactID string `json:"contactId" validate:"required,uuid"`
}

// ReviewCommand is the request body for reviewing a suggestion.
type ReviewCommand struct {
	Status ReviewStatus `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

// PurgeResult reports the rows removed by a purge.
type PurgeResult struct {
	DeletedBatches  int64 `json:"deletedBatches"`
	DeletedMessages int64 `json:"deletedMessages"`
	DeletedUpdates  int64 `json:"deletedUpdates"`
}
