package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/outreach/pkg/pagination"
	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
	"github.com/JaimeStill/outreach/pkg/validation"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	validator  *validation.Validator
}

func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
		validator:  validation.New(),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Name", "Description")
	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := r.validator.Struct(cmd); err != nil {
		return nil, err
	}
	return r.returning(ctx, "prompt created", `
		INSERT INTO prompts (name, stage, instructions, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+columns,
		cmd.Name, string(cmd.Stage), cmd.Instructions, cmd.Description,
	)
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := r.validator.Struct(cmd); err != nil {
		return nil, err
	}
	return r.returning(ctx, "prompt updated", `
		UPDATE prompts
		SET name = $2, stage = $3, instructions = $4, description = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		id, cmd.Name, string(cmd.Stage), cmd.Instructions, cmd.Description,
	)
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return r.returning(ctx, "prompt deactivated", `
		UPDATE prompts SET active = false, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		id,
	)
}

// Activate locks the target row to read its stage, clears the stage's live
// override, then sets the target. The partial unique index on active rows
// rejects any interleaving that would leave two live overrides.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		stage, err := repository.QueryScalar[string](ctx, tx,
			"SELECT stage FROM prompts WHERE id = $1 FOR UPDATE", id)
		if err != nil {
			return Prompt{}, err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE prompts SET active = false, updated_at = now()
			WHERE stage = $1 AND active AND id <> $2`,
			stage, id,
		); err != nil {
			return Prompt{}, fmt.Errorf("clear live %s prompt: %w", stage, err)
		}

		return repository.QueryOne(ctx, tx, `
			UPDATE prompts SET active = true, updated_at = now()
			WHERE id = $1
			RETURNING `+columns,
			[]any{id}, scanPrompt)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt activated", "id", p.ID, "stage", p.Stage)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.RunTx(ctx, r.db, func(tx *sql.Tx) error {
		return repository.ExecExpectOne(ctx, tx, "DELETE FROM prompts WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

// returning runs a single-row write whose RETURNING list is columns and logs
// event on success.
func (r *repo) returning(ctx context.Context, event, q string, args ...any) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(event, "id", p.ID, "name", p.Name, "stage", p.Stage, "active", p.Active)
	return &p, nil
}

func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	text, err := repository.QueryScalar[string](ctx, r.db,
		"SELECT instructions FROM prompts WHERE stage = $1 AND active", string(stage))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Instructions(stage)
	case err != nil:
		return "", fmt.Errorf("load live %s prompt: %w", stage, err)
	}
	return text, nil
}

func (r *repo) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}
