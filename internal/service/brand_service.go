package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
	"github.com/ahsrafiq/glass-chat-craft/internal/repository"
)

// BrandService encapsula la logica para manejar marcas de un usuario.
type BrandService struct {
	repo repository.BrandRepository
}

var (
	ErrBrandServiceNotConfigured = errors.New("brand service not configured")
	ErrBrandInvalidInput         = errors.New("brand invalid input")
)

func NewBrandService(repo repository.BrandRepository) *BrandService {
	return &BrandService{repo: repo}
}

func (s *BrandService) Create(ctx context.Context, userID, name, voice, about string) (domain.Brand, error) {
	if s == nil || s.repo == nil {
		return domain.Brand{}, ErrBrandServiceNotConfigured
	}

	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return domain.Brand{}, ErrBrandInvalidInput
	}

	brand := domain.Brand{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Voice:     strings.TrimSpace(voice),
		About:     strings.TrimSpace(about),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, brand); err != nil {
		return domain.Brand{}, err
	}
	return brand, nil
}

func (s *BrandService) List(ctx context.Context, userID string) ([]domain.Brand, error) {
	if s == nil || s.repo == nil {
		return nil, ErrBrandServiceNotConfigured
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *BrandService) Get(ctx context.Context, userID, brandID string) (domain.Brand, error) {
	if s == nil || s.repo == nil {
		return domain.Brand{}, ErrBrandServiceNotConfigured
	}

	brand, err := s.repo.GetByID(ctx, strings.TrimSpace(brandID), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Brand{}, ErrBrandNotFound
		}
		return domain.Brand{}, err
	}
	return brand, nil
}
