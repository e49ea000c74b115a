package admin_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/outreach/internal/admin"
	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/messages"
	"github.com/JaimeStill/outreach/internal/testdb"
)

type fixture struct {
	admin   admin.System
	batches batches.System
	contact func(first string) uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testdb.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lifecycle := batches.New(db, logger)

	return fixture{
		admin:   admin.New(db, lifecycle, logger),
		batches: lifecycle,
		contact: func(first string) uuid.UUID {
			return testdb.Contact(t, db, first, "5550001111")
		},
	}
}

// run enqueues a batch for a new contact and drives it to status.
func (f fixture) run(t *testing.T, first string, status batches.Status) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	b, err := f.batches.Enqueue(ctx, f.contact(first))
	require.NoError(t, err)
	if status == batches.StatusPending {
		return b.ID
	}

	claimed, err := f.batches.ClaimNext(ctx)
	require.NoError(t, err)
	require.Equal(t, b.ID, claimed.ID)

	switch status {
	case batches.StatusCompleted:
		_, err = f.batches.Complete(ctx, b.ID, batches.CompleteCommand{
			Prompt:      "prompt for " + first,
			RawResponse: "{}",
			Snippet:     "Them: hey",
			Messages:    []messages.Message{{UserID: "5550001111", Text: "hey", Timestamp: "2026-03-01", Service: "SMS"}},
			Suggestions: batches.SuggestionSet{
				FieldSuggestions: []batches.FieldSuggestion{
					{FieldID: "pet_names", FieldName: "Pet Names", SuggestedValue: "Biscuit", Confidence: 0.95},
				},
			},
		})
	case batches.StatusFailed:
		_, err = f.batches.Fail(ctx, b.ID, batches.FailCommand{Message: "model unavailable"})
	}
	require.NoError(t, err)
	return b.ID
}

func TestRepository_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.run(t, "Done", batches.StatusCompleted)
	f.run(t, "Broken", batches.StatusFailed)
	f.run(t, "Waiting", batches.StatusPending)

	s, err := f.admin.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Queue.Pending)
	assert.Equal(t, 0, s.Queue.Processing)
	assert.Equal(t, 1, s.Queue.Completed)
	assert.Equal(t, 1, s.Last24Hours.Completed)
	assert.Equal(t, 1, s.Last24Hours.Failed)
	assert.Equal(t, 1, s.PendingSuggestions)
}

func TestRepository_ListRecent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doneID := f.run(t, "Done", batches.StatusCompleted)
	failedID := f.run(t, "Broken", batches.StatusFailed)

	items, err := f.admin.ListRecent(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, failedID, items[0].ID, "most recently updated first")
	assert.Equal(t, "Broken", items[0].ContactName)
	assert.Empty(t, items[0].Suggestions)

	assert.Equal(t, doneID, items[1].ID)
	assert.Equal(t, 1, items[1].MessageCount)
	require.Len(t, items[1].Suggestions, 1)
	assert.Equal(t, 1, items[1].Suggestions[0].ChangeCount)
	assert.True(t, items[1].Suggestions[0].HasNotableUpdates)

	failed := batches.StatusFailed
	only, err := f.admin.ListRecent(ctx, 10, &failed)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, failedID, only[0].ID)

	one, err := f.admin.ListRecent(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestRepository_Detail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.run(t, "Done", batches.StatusCompleted)

	d, err := f.admin.Detail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Done", d.ContactName)
	assert.Equal(t, batches.StatusCompleted, d.Status)
	require.NotNil(t, d.LLMPrompt)
	assert.Equal(t, "prompt for Done", *d.LLMPrompt)
	require.Len(t, d.Messages, 1)
	assert.Equal(t, "hey", d.Messages[0].Text)
	require.Len(t, d.Suggestions, 1)
	assert.Equal(t, "Biscuit", d.Suggestions[0].SuggestedChanges.FieldSuggestions[0].SuggestedValue)

	_, err = f.admin.Detail(ctx, uuid.New())
	assert.ErrorIs(t, err, admin.ErrNotFound)
}

func TestRepository_DetailChangeCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.batches.Enqueue(ctx, f.contact("Counted"))
	require.NoError(t, err)
	_, err = f.batches.ClaimNext(ctx)
	require.NoError(t, err)

	_, err = f.batches.Complete(ctx, b.ID, batches.CompleteCommand{
		Prompt:      "prompt",
		RawResponse: "{}",
		Suggestions: batches.SuggestionSet{
			FieldSuggestions: []batches.FieldSuggestion{
				{FieldID: "hobbies", FieldName: "Hobbies", SuggestedValue: "climbing", Confidence: 0.9},
				{FieldID: "company", FieldName: "Company", SuggestedValue: "Acme", Confidence: 0.4},
			},
			TagSuggestions: []batches.TagSuggestion{
				{TagName: "climber", Confidence: 0.6},
			},
		},
	})
	require.NoError(t, err)

	d, err := f.admin.Detail(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, d.Suggestions, 1)

	stored := d.Suggestions[0]
	assert.Equal(t, 3, stored.ChangeCount)
	assert.True(t, stored.HasNotableUpdates)
	assert.Len(t, stored.SuggestedChanges.FieldSuggestions, 2)
	assert.Len(t, stored.SuggestedChanges.TagSuggestions, 1)
	assert.Equal(t, batches.ReviewPending, stored.Status)

	reviewed, err := f.batches.Review(ctx, stored.ID, batches.ReviewCommand{Status: batches.ReviewAccepted})
	require.NoError(t, err)
	assert.Equal(t, batches.ReviewAccepted, reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)

	_, err = f.batches.Review(ctx, stored.ID, batches.ReviewCommand{Status: batches.ReviewRejected})
	assert.ErrorIs(t, err, batches.ErrInvalidReview)

	_, err = f.batches.Review(ctx, uuid.New(), batches.ReviewCommand{Status: batches.ReviewAccepted})
	assert.ErrorIs(t, err, batches.ErrSuggestionNotFound)
	assert.NotErrorIs(t, err, batches.ErrNotFound)
}

func TestRepository_DetailFailedExchange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.batches.Enqueue(ctx, f.contact("Garbled"))
	require.NoError(t, err)
	_, err = f.batches.ClaimNext(ctx)
	require.NoError(t, err)

	_, err = f.batches.Fail(ctx, b.ID, batches.FailCommand{
		Message:     "response does not match schema",
		Prompt:      "prompt for Garbled",
		RawResponse: "Sure! Here you go.",
	})
	require.NoError(t, err)

	d, err := f.admin.Detail(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, batches.StatusFailed, d.Status)
	require.NotNil(t, d.LLMResponse)
	assert.Equal(t, "Sure! Here you go.", *d.LLMResponse)
	require.NotNil(t, d.ErrorMessage)
	assert.Equal(t, "response does not match schema", *d.ErrorMessage)
}

func TestRepository_Delegation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.run(t, "Done", batches.StatusCompleted)
	pending := f.run(t, "Waiting", batches.StatusPending)

	_, err := f.admin.Reprocess(ctx, pending)
	assert.ErrorIs(t, err, batches.ErrInvalidTransition)

	b, err := f.admin.Reprocess(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, batches.StatusPending, b.Status)

	d, err := f.admin.Detail(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, d.Suggestions)
	assert.Empty(t, d.Messages)

	res, err := f.admin.PurgeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedBatches)

	s, err := f.admin.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.Queue.Pending)
}
