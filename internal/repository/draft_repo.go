package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// DraftRepository define el contrato de persistencia para borradores.
// Toda lectura o borrado va filtrado por dueno.
type DraftRepository interface {
	Create(ctx context.Context, draft domain.Draft) error
	GetByID(ctx context.Context, id, userID string) (domain.Draft, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Draft, error)
	UpdateCurrentVersion(ctx context.Context, id string, version int) error
	Delete(ctx context.Context, id, userID string) error
}

type PgDraftRepository struct {
	pool *pgxpool.Pool
}

func NewPgDraftRepository(pool *pgxpool.Pool) *PgDraftRepository {
	return &PgDraftRepository{pool: pool}
}

func (r *PgDraftRepository) Create(ctx context.Context, draft domain.Draft) error {
	const query = `
		INSERT INTO drafts (id, user_id, brand_id, email_type, original_request, audience, key_points, call_to_action, current_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		draft.ID,
		draft.UserID,
		draft.BrandID,
		draft.EmailType,
		draft.OriginalRequest,
		draft.Audience,
		draft.KeyPoints,
		draft.CallToAction,
		draft.CurrentVersion,
		draft.CreatedAt,
	)
	return err
}

func (r *PgDraftRepository) GetByID(ctx context.Context, id, userID string) (domain.Draft, error) {
	const query = `
		SELECT id, user_id, brand_id, email_type, original_request, audience, key_points, call_to_action, current_version, created_at
		FROM drafts
		WHERE id = $1 AND user_id = $2
	`
	var d domain.Draft
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&d.ID,
		&d.UserID,
		&d.BrandID,
		&d.EmailType,
		&d.OriginalRequest,
		&d.Audience,
		&d.KeyPoints,
		&d.CallToAction,
		&d.CurrentVersion,
		&d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Draft{}, err
	}
	return d, err
}

func (r *PgDraftRepository) ListByUser(ctx context.Context, userID string) ([]domain.Draft, error) {
	const query = `
		SELECT id, user_id, brand_id, email_type, original_request, audience, key_points, call_to_action, current_version, created_at
		FROM drafts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []domain.Draft
	for rows.Next() {
		var d domain.Draft
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.BrandID,
			&d.EmailType,
			&d.OriginalRequest,
			&d.Audience,
			&d.KeyPoints,
			&d.CallToAction,
			&d.CurrentVersion,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drafts, nil
}

func (r *PgDraftRepository) UpdateCurrentVersion(ctx context.Context, id string, version int) error {
	const query = `
		UPDATE drafts
		SET current_version = $2
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgDraftRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `
		DELETE FROM drafts
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
