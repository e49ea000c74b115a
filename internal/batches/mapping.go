package batches

import (
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/outreach/internal/messages"
	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "analysis_batches", "b").
	Project("id", "ID").
	Project("contact_id", "ContactID").
	Project("status", "Status").
	Project("message_count", "MessageCount").
	Project("attempts", "Attempts").
	Project("claimed_at", "ClaimedAt").
	Project("error_message", "ErrorMessage").
	Project("llm_prompt", "LLMPrompt").
	Project("llm_response", "LLMResponse").
	Project("conversation_snippet", "ConversationSnippet").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Column lists matching ScanBatch, ScanSuggestion, and ScanMessage.
const (
	BatchColumns = `id, contact_id, status, message_count, attempts, claimed_at,
	error_message, llm_prompt, llm_response, conversation_snippet,
	created_at, updated_at`

	SuggestionColumns = `id, batch_id, status, suggested_changes, change_count,
	has_notable_updates, reviewed_at, created_at`

	MessageColumns = `user_id, text, sent_at, service, destination_id, is_from_me`
)

// ScanBatch scans a row selected with BatchColumns.
func ScanBatch(s repository.Scanner) (Batch, error) {
	var b Batch
	err := s.Scan(
		&b.ID,
		&b.ContactID,
		&b.Status,
		&b.MessageCount,
		&b.Attempts,
		&b.ClaimedAt,
		&b.ErrorMessage,
		&b.LLMPrompt,
		&b.LLMResponse,
		&b.ConversationSnippet,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

// ScanSuggestion scans a row selected with SuggestionColumns.
func ScanSuggestion(s repository.Scanner) (SuggestedUpdate, error) {
	var (
		u   SuggestedUpdate
		raw []byte
	)

	err := s.Scan(
		&u.ID,
		&u.BatchID,
		&u.Status,
		&raw,
		&u.ChangeCount,
		&u.HasNotableUpdates,
		&u.ReviewedAt,
		&u.CreatedAt,
	)
	if err != nil {
		return u, err
	}

	if err := json.Unmarshal(raw, &u.SuggestedChanges); err != nil {
		return u, fmt.Errorf("decode suggested changes: %w", err)
	}
	return u, nil
}

// ScanMessage scans a row selected with MessageColumns.
func ScanMessage(s repository.Scanner) (messages.Message, error) {
	var m messages.Message
	err := s.Scan(
		&m.UserID,
		&m.Text,
		&m.Timestamp,
		&m.Service,
		&m.DestinationID,
		&m.IsFromMe,
	)
	return m, err
}
