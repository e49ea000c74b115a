package batches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
	"github.com/JaimeStill/outreach/pkg/validation"
)

type repo struct {
	db        *sql.DB
	logger    *slog.Logger
	validator *validation.Validator
}

// New creates a batch repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:        db,
		logger:    logger.With("system", "batches"),
		validator: validation.New(),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.validator)
}

func (r *repo) Enqueue(ctx context.Context, contactID uuid.UUID) (*Batch, error) {
	q := `
		INSERT INTO analysis_batches (contact_id)
		SELECT id FROM contacts WHERE id = $1
		RETURNING ` + BatchColumns

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		return repository.QueryOne(ctx, tx, q, []any{contactID}, ScanBatch)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrInvalidContact, ErrInvalidContact)
	}

	r.logger.Info("batch enqueued", "batch_id", b.ID, "contact_id", b.ContactID)
	return &b, nil
}

func (r *repo) ClaimNext(ctx context.Context) (*Batch, error) {
	q := `
		UPDATE analysis_batches
		SET status = 'PROCESSING',
			attempts = attempts + 1,
			claimed_at = NOW(),
			updated_at = NOW()
		WHERE id = (
			SELECT id FROM analysis_batches
			WHERE status = 'PENDING'
			ORDER BY created_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + BatchColumns

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		return repository.QueryOne(ctx, tx, q, nil, ScanBatch)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim batch: %w", err)
	}

	r.logger.Info("batch claimed",
		"batch_id", b.ID,
		"contact_id", b.ContactID,
		"attempts", b.Attempts,
	)
	return &b, nil
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Batch, error) {
	if err := cmd.Suggestions.Validate(); err != nil {
		return nil, err
	}

	changes := normalizeSuggestions(cmd.Suggestions)
	payload, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("marshal suggestions: %w", err)
	}

	completeQ := `
		UPDATE analysis_batches
		SET status = 'COMPLETED',
			message_count = $2,
			llm_prompt = $3,
			llm_response = $4,
			conversation_snippet = $5,
			error_message = NULL,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + BatchColumns

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		if err := lockStatus(ctx, tx, id, is(StatusProcessing)); err != nil {
			return Batch{}, err
		}

		if err := insertMessages(ctx, tx, id, cmd); err != nil {
			return Batch{}, err
		}

		if changes.ChangeCount() > 0 {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO suggested_updates (batch_id, suggested_changes, change_count, has_notable_updates)
				VALUES ($1, $2, $3, $4)`,
				id, payload, changes.ChangeCount(), changes.HasNotable(),
			); err != nil {
				return Batch{}, fmt.Errorf("insert suggested update: %w", err)
			}
		}

		return repository.QueryOne(ctx, tx, completeQ, []any{
			id,
			len(cmd.Messages),
			nullable(cmd.Prompt),
			nullable(cmd.RawResponse),
			nullable(cmd.Snippet),
		}, ScanBatch)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("batch completed",
		"batch_id", b.ID,
		"contact_id", b.ContactID,
		"messages", b.MessageCount,
		"changes", changes.ChangeCount(),
	)
	return &b, nil
}

func (r *repo) Fail(ctx context.Context, id uuid.UUID, cmd FailCommand) (*Batch, error) {
	q := `
		UPDATE analysis_batches
		SET status = 'FAILED',
			error_message = $2,
			llm_prompt = $3,
			llm_response = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + BatchColumns

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		if err := lockStatus(ctx, tx, id, is(StatusProcessing)); err != nil {
			return Batch{}, err
		}
		return repository.QueryOne(ctx, tx, q, []any{
			id,
			cmd.Message,
			nullable(cmd.Prompt),
			nullable(cmd.RawResponse),
		}, ScanBatch)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Warn("batch failed",
		"batch_id", b.ID,
		"contact_id", b.ContactID,
		"error", cmd.Message,
	)
	return &b, nil
}

func (r *repo) Reprocess(ctx context.Context, id uuid.UUID) (*Batch, error) {
	q := `
		UPDATE analysis_batches
		SET status = 'PENDING',
			message_count = 0,
			claimed_at = NULL,
			error_message = NULL,
			llm_prompt = NULL,
			llm_response = NULL,
			conversation_snippet = NULL,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + BatchColumns

	b, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Batch, error) {
		if err := lockStatus(ctx, tx, id, Status.Terminal); err != nil {
			return Batch{}, err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM suggested_updates WHERE batch_id = $1", id); err != nil {
			return Batch{}, fmt.Errorf("delete suggestions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM batch_messages WHERE batch_id = $1", id); err != nil {
			return Batch{}, fmt.Errorf("delete batch messages: %w", err)
		}

		return repository.QueryOne(ctx, tx, q, []any{id}, ScanBatch)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("batch reprocessed", "batch_id", b.ID, "contact_id", b.ContactID)
	return &b, nil
}

func (r *repo) PurgeAll(ctx context.Context) (*PurgeResult, error) {
	res, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (PurgeResult, error) {
		var pr PurgeResult

		if _, err := tx.ExecContext(ctx, "LOCK TABLE analysis_batches IN EXCLUSIVE MODE"); err != nil {
			return pr, fmt.Errorf("lock batches: %w", err)
		}

		var err error
		if pr.DeletedUpdates, err = repository.ExecCount(ctx, tx, "DELETE FROM suggested_updates"); err != nil {
			return pr, fmt.Errorf("delete suggestions: %w", err)
		}
		if pr.DeletedMessages, err = repository.ExecCount(ctx, tx, "DELETE FROM batch_messages"); err != nil {
			return pr, fmt.Errorf("delete batch messages: %w", err)
		}
		if pr.DeletedBatches, err = repository.ExecCount(ctx, tx, "DELETE FROM analysis_batches"); err != nil {
			return pr, fmt.Errorf("delete batches: %w", err)
		}

		return pr, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Warn("batches purged",
		"batches", res.DeletedBatches,
		"messages", res.DeletedMessages,
		"suggestions", res.DeletedUpdates,
	)
	return &res, nil
}

func (r *repo) SweepStale(ctx context.Context, maxAge time.Duration) (int, error) {
	q := `
		UPDATE analysis_batches
		SET status = 'FAILED',
			error_message = $1,
			updated_at = NOW()
		WHERE status = 'PROCESSING'
			AND claimed_at < NOW() - ($2::float8 * INTERVAL '1 second')`

	msg := fmt.Sprintf("processing timed out after %s", maxAge)

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		return repository.ExecCount(ctx, tx, q, msg, maxAge.Seconds())
	})
	if err != nil {
		return 0, fmt.Errorf("sweep stale batches: %w", err)
	}

	if n > 0 {
		r.logger.Warn("stale batches failed", "count", n, "max_age", maxAge)
	}
	return int(n), nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Batch, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	b, err := repository.QueryOne(ctx, r.db, q, args, ScanBatch)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &b, nil
}

func (r *repo) Review(ctx context.Context, suggestionID uuid.UUID, cmd ReviewCommand) (*SuggestedUpdate, error) {
	if cmd.Status != ReviewAccepted && cmd.Status != ReviewRejected {
		return nil, fmt.Errorf("%w: cannot move to %q", ErrInvalidReview, cmd.Status)
	}

	q := `
		UPDATE suggested_updates
		SET status = $2, reviewed_at = NOW()
		WHERE id = $1
		RETURNING ` + SuggestionColumns

	u, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (SuggestedUpdate, error) {
		var current ReviewStatus
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM suggested_updates WHERE id = $1 FOR UPDATE",
			suggestionID,
		).Scan(&current)
		if err != nil {
			return SuggestedUpdate{}, repository.MapError(err, ErrSuggestionNotFound, ErrSuggestionNotFound)
		}

		if current != ReviewPending {
			return SuggestedUpdate{}, fmt.Errorf("%w: already %s", ErrInvalidReview, current)
		}

		return repository.QueryOne(ctx, tx, q, []any{suggestionID, string(cmd.Status)}, ScanSuggestion)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("suggestion reviewed",
		"suggestion_id", u.ID,
		"batch_id", u.BatchID,
		"status", u.Status,
	)
	return &u, nil
}

// lockStatus row-locks batch id and confirms allowed accepts its status.
func lockStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, allowed func(Status) bool) error {
	var current Status
	err := tx.QueryRowContext(ctx,
		"SELECT status FROM analysis_batches WHERE id = $1 FOR UPDATE",
		id,
	).Scan(&current)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	if !allowed(current) {
		return fmt.Errorf("%w: batch %s is %s", ErrInvalidTransition, id, current)
	}
	return nil
}

func is(want Status) func(Status) bool {
	return func(s Status) bool { return s == want }
}

func insertMessages(ctx context.Context, tx *sql.Tx, id uuid.UUID, cmd CompleteCommand) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM batch_messages WHERE batch_id = $1", id); err != nil {
		return fmt.Errorf("clear batch messages: %w", err)
	}

	if len(cmd.Messages) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO batch_messages (batch_id, position, `+MessageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("prepare batch messages: %w", err)
	}
	defer stmt.Close()

	for i, m := range cmd.Messages {
		if _, err := stmt.ExecContext(ctx,
			id, i, m.UserID, m.Text, m.Timestamp, m.Service, m.DestinationID, m.IsFromMe,
		); err != nil {
			return fmt.Errorf("insert batch message %d: %w", i, err)
		}
	}
	return nil
}

func normalizeSuggestions(s SuggestionSet) SuggestionSet {
	if s.FieldSuggestions == nil {
		s.FieldSuggestions = []FieldSuggestion{}
	}
	if s.TagSuggestions == nil {
		s.TagSuggestions = []TagSuggestion{}
	}
	return s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
