package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

type RevisionRepository interface {
	Create(ctx context.Context, revision domain.Revision) error
	GetByVersion(ctx context.Context, draftID string, version int) (domain.Revision, error)
	ListByDraftID(ctx context.Context, draftID string) ([]domain.Revision, error)
	DeleteByDraftID(ctx context.Context, draftID string) error
}

type PgRevisionRepository struct {
	pool *pgxpool.Pool
}

func NewPgRevisionRepository(pool *pgxpool.Pool) *PgRevisionRepository {
	return &PgRevisionRepository{pool: pool}
}

func (r *PgRevisionRepository) Create(ctx context.Context, revision domain.Revision) error {
	const query = `
		INSERT INTO revisions (id, draft_id, version, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		revision.ID,
		revision.DraftID,
		revision.Version,
		revision.Content,
		revision.CreatedAt,
	)
	return err
}

func (r *PgRevisionRepository) GetByVersion(ctx context.Context, draftID string, version int) (domain.Revision, error) {
	const query = `
		SELECT id, draft_id, version, content, created_at
		FROM revisions
		WHERE draft_id = $1 AND version = $2
	`
	var rev domain.Revision
	err := r.pool.QueryRow(ctx, query, draftID, version).Scan(
		&rev.ID,
		&rev.DraftID,
		&rev.Version,
		&rev.Content,
		&rev.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Revision{}, err
	}
	return rev, err
}

// ListByDraftID devuelve las revisiones en orden de version ascendente,
// que coincide con el orden cronologico de creacion.
func (r *PgRevisionRepository) ListByDraftID(ctx context.Context, draftID string) ([]domain.Revision, error) {
	const query = `
		SELECT id, draft_id, version, content, created_at
		FROM revisions
		WHERE draft_id = $1
		ORDER BY version ASC
	`
	rows, err := r.pool.Query(ctx, query, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []domain.Revision
	for rows.Next() {
		var rev domain.Revision
		if err := rows.Scan(
			&rev.ID,
			&rev.DraftID,
			&rev.Version,
			&rev.Content,
			&rev.CreatedAt,
		); err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return revisions, nil
}

func (r *PgRevisionRepository) DeleteByDraftID(ctx context.Context, draftID string) error {
	const query = `
		DELETE FROM revisions
		WHERE draft_id = $1
	`
	_, err := r.pool.Exec(ctx, query, draftID)
	return err
}
