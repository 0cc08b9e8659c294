package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// BrandRepository define el contrato de persistencia para marcas. Las
// lecturas van filtradas por dueno: pedir una marca ajena da ErrNoRows.
type BrandRepository interface {
	Create(ctx context.Context, brand domain.Brand) error
	GetByID(ctx context.Context, id, userID string) (domain.Brand, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Brand, error)
}

type PgBrandRepository struct {
	pool *pgxpool.Pool
}

func NewPgBrandRepository(pool *pgxpool.Pool) *PgBrandRepository {
	return &PgBrandRepository{pool: pool}
}

func (r *PgBrandRepository) Create(ctx context.Context, brand domain.Brand) error {
	const query = `
		INSERT INTO brands (id, user_id, name, voice, about, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		brand.ID,
		brand.UserID,
		brand.Name,
		brand.Voice,
		brand.About,
		brand.CreatedAt,
	)
	return err
}

func (r *PgBrandRepository) GetByID(ctx context.Context, id, userID string) (domain.Brand, error) {
	const query = `
		SELECT id, user_id, name, voice, about, created_at
		FROM brands
		WHERE id = $1 AND user_id = $2
	`
	var b domain.Brand
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Voice,
		&b.About,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Brand{}, err
	}
	return b, err
}

func (r *PgBrandRepository) ListByUser(ctx context.Context, userID string) ([]domain.Brand, error) {
	const query = `
		SELECT id, user_id, name, voice, about, created_at
		FROM brands
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []domain.Brand
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.Name,
			&b.Voice,
			&b.About,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return brands, nil
}
