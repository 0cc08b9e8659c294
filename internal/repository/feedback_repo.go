package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// FeedbackRepository define el contrato de persistencia para comentarios de
// revision. Las operaciones puntuales exigen el draft al que pertenece el
// comentario; la autorizacion sobre el draft la resuelve la capa de servicio.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback domain.Feedback) error
	GetByID(ctx context.Context, id, draftID string) (domain.Feedback, error)
	ListByDraftID(ctx context.Context, draftID string) ([]domain.Feedback, error)
	SetValidity(ctx context.Context, id string, valid bool) error
	Delete(ctx context.Context, id, draftID string) error
	DeleteByDraftID(ctx context.Context, draftID string) error
}

type PgFeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewPgFeedbackRepository(pool *pgxpool.Pool) *PgFeedbackRepository {
	return &PgFeedbackRepository{pool: pool}
}

func (r *PgFeedbackRepository) Create(ctx context.Context, feedback domain.Feedback) error {
	const query = `
		INSERT INTO feedback (id, draft_id, text, is_valid, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		feedback.ID,
		feedback.DraftID,
		feedback.Text,
		feedback.Valid,
		feedback.CreatedAt,
	)
	return err
}

func (r *PgFeedbackRepository) GetByID(ctx context.Context, id, draftID string) (domain.Feedback, error) {
	const query = `
		SELECT id, draft_id, text, is_valid, created_at
		FROM feedback
		WHERE id = $1 AND draft_id = $2
	`
	var fb domain.Feedback
	err := r.pool.QueryRow(ctx, query, id, draftID).Scan(
		&fb.ID,
		&fb.DraftID,
		&fb.Text,
		&fb.Valid,
		&fb.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Feedback{}, err
	}
	return fb, err
}

func (r *PgFeedbackRepository) ListByDraftID(ctx context.Context, draftID string) ([]domain.Feedback, error) {
	const query = `
		SELECT id, draft_id, text, is_valid, created_at
		FROM feedback
		WHERE draft_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.DraftID,
			&fb.Text,
			&fb.Valid,
			&fb.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PgFeedbackRepository) SetValidity(ctx context.Context, id string, valid bool) error {
	const query = `
		UPDATE feedback
		SET is_valid = $2
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, valid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgFeedbackRepository) Delete(ctx context.Context, id, draftID string) error {
	const query = `
		DELETE FROM feedback
		WHERE id = $1 AND draft_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, draftID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgFeedbackRepository) DeleteByDraftID(ctx context.Context, draftID string) error {
	const query = `
		DELETE FROM feedback
		WHERE draft_id = $1
	`
	_, err := r.pool.Exec(ctx, query, draftID)
	return err
}
