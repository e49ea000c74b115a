package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
)

type repo struct {
	db        *sql.DB
	lifecycle Lifecycle
	logger    *slog.Logger
}

// New creates the admin query service. Reads use db directly inside
// read-only transactions; mutations go through lifecycle.
func New(db *sql.DB, lifecycle Lifecycle, logger *slog.Logger) System {
	return &repo{
		db:        db,
		lifecycle: lifecycle,
		logger:    logger.With("system", "admin"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

const summaryQuery = `
	SELECT
		COUNT(*) FILTER (WHERE status = 'PENDING'),
		COUNT(*) FILTER (WHERE status = 'PROCESSING'),
		COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		COUNT(*) FILTER (WHERE status = 'COMPLETED' AND updated_at >= NOW() - INTERVAL '24 hours'),
		COUNT(*) FILTER (WHERE status = 'FAILED' AND updated_at >= NOW() - INTERVAL '24 hours')
	FROM analysis_batches`

func (r *repo) Summary(ctx context.Context) (*Summary, error) {
	s, err := repository.WithReadTx(ctx, r.db, func(tx *sql.Tx) (Summary, error) {
		var s Summary

		err := tx.QueryRowContext(ctx, summaryQuery).Scan(
			&s.Queue.Pending,
			&s.Queue.Processing,
			&s.Queue.Completed,
			&s.Last24Hours.Completed,
			&s.Last24Hours.Failed,
		)
		if err != nil {
			return s, fmt.Errorf("count batches: %w", err)
		}

		s.PendingSuggestions, err = repository.QueryScalar[int](ctx, tx,
			"SELECT COUNT(*) FROM suggested_updates WHERE status = $1",
			string(batches.ReviewPending),
		)
		if err != nil {
			return s, fmt.Errorf("count suggestions: %w", err)
		}

		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ListRecent(ctx context.Context, limit int, status *batches.Status) ([]RecentBatch, error) {
	var filter any
	if status != nil {
		filter = string(*status)
	}

	q, args := query.
		NewBuilder(recentProjection, recentSort...).
		WhereEquals("Status", filter).
		BuildLimit(ClampLimit(limit))

	return repository.WithReadTx(ctx, r.db, func(tx *sql.Tx) ([]RecentBatch, error) {
		items, err := repository.QueryMany(ctx, tx, q, args, scanRecent)
		if err != nil {
			return nil, fmt.Errorf("list recent batches: %w", err)
		}
		if len(items) == 0 {
			return []RecentBatch{}, nil
		}

		ids := make([]string, len(items))
		index := make(map[uuid.UUID]int, len(items))
		for i, b := range items {
			ids[i] = b.ID.String()
			index[b.ID] = i
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT batch_id, id, status, change_count, has_notable_updates
			FROM suggested_updates
			WHERE batch_id = ANY($1::uuid[])
			ORDER BY created_at, id`,
			ids,
		)
		if err != nil {
			return nil, fmt.Errorf("list suggestion summaries: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				batchID uuid.UUID
				s       SuggestionSummary
			)
			if err := rows.Scan(&batchID, &s.ID, &s.Status, &s.ChangeCount, &s.HasNotableUpdates); err != nil {
				return nil, err
			}
			if i, ok := index[batchID]; ok {
				items[i].Suggestions = append(items[i].Suggestions, s)
			}
		}

		return items, rows.Err()
	})
}

func (r *repo) Detail(ctx context.Context, id uuid.UUID) (*BatchDetail, error) {
	batchQ := `
		SELECT ` + prefixed("b", batches.BatchColumns) + `, ` + contactName + `
		FROM analysis_batches b
		JOIN contacts c ON c.id = b.contact_id
		WHERE b.id = $1`

	d, err := repository.WithReadTx(ctx, r.db, func(tx *sql.Tx) (BatchDetail, error) {
		var d BatchDetail

		err := tx.QueryRowContext(ctx, batchQ, id).Scan(
			&d.ID,
			&d.ContactID,
			&d.Status,
			&d.MessageCount,
			&d.Attempts,
			&d.ClaimedAt,
			&d.ErrorMessage,
			&d.LLMPrompt,
			&d.LLMResponse,
			&d.ConversationSnippet,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.ContactName,
		)
		if err != nil {
			return d, repository.MapError(err, ErrNotFound, ErrNotFound)
		}

		d.Messages, err = repository.QueryMany(ctx, tx,
			"SELECT "+batches.MessageColumns+" FROM batch_messages WHERE batch_id = $1 ORDER BY position",
			[]any{id}, batches.ScanMessage,
		)
		if err != nil {
			return d, fmt.Errorf("load batch messages: %w", err)
		}

		d.Suggestions, err = repository.QueryMany(ctx, tx,
			"SELECT "+batches.SuggestionColumns+" FROM suggested_updates WHERE batch_id = $1 ORDER BY created_at, id",
			[]any{id}, batches.ScanSuggestion,
		)
		if err != nil {
			return d, fmt.Errorf("load suggestions: %w", err)
		}

		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) Reprocess(ctx context.Context, id uuid.UUID) (*batches.Batch, error) {
	b, err := r.lifecycle.Reprocess(ctx, id)
	if err != nil {
		return nil, err
	}
	r.logger.Info("reprocess requested", "batch_id", id)
	return b, nil
}

func (r *repo) PurgeAll(ctx context.Context) (*batches.PurgeResult, error) {
	res, err := r.lifecycle.PurgeAll(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Warn("purge requested", "batches", res.DeletedBatches)
	return res, nil
}
