package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/compose"
	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
	"github.com/ahsrafiq/glass-chat-craft/internal/email"
	"github.com/ahsrafiq/glass-chat-craft/internal/metrics"
	"github.com/ahsrafiq/glass-chat-craft/internal/repository"
	"github.com/ahsrafiq/glass-chat-craft/internal/transcript"
)

// DraftService orquesta el ciclo de vida de un borrador: generacion inicial,
// feedback con regeneracion, transcripcion y borrado en cascada.
type DraftService struct {
	logger      *zap.Logger
	composer    compose.Composer
	drafts      repository.DraftRepository
	brands      repository.BrandRepository
	revisions   repository.RevisionRepository
	feedback    repository.FeedbackRepository
	emailSender email.Sender
}

var (
	ErrDraftServiceNotConfigured = errors.New("draft service not configured")
	ErrDraftNotFound             = errors.New("draft not found")
	ErrBrandNotFound             = errors.New("brand not found")
	ErrFeedbackNotFound          = errors.New("feedback not found")
	ErrInvalidDraftInput         = errors.New("draft invalid input")
	ErrInvalidFeedbackInput      = errors.New("feedback invalid input")
	ErrComposeFailed             = errors.New("compose failed")
)

func NewDraftService(
	logger *zap.Logger,
	composer compose.Composer,
	drafts repository.DraftRepository,
	brands repository.BrandRepository,
	revisions repository.RevisionRepository,
	feedback repository.FeedbackRepository,
	emailSender email.Sender,
) *DraftService {
	return &DraftService{
		logger:      logger,
		composer:    composer,
		drafts:      drafts,
		brands:      brands,
		revisions:   revisions,
		feedback:    feedback,
		emailSender: emailSender,
	}
}

type StartDraftInput struct {
	BrandID      string
	EmailType    string
	Request      string
	Audience     string
	KeyPoints    []string
	CallToAction string
}

// Start compone la primera version y recien entonces persiste el borrador.
// Si el composer falla no queda nada guardado.
func (s *DraftService) Start(ctx context.Context, userID string, input StartDraftInput) (domain.Draft, domain.Revision, error) {
	if s == nil || s.composer == nil || s.drafts == nil {
		return domain.Draft{}, domain.Revision{}, ErrDraftServiceNotConfigured
	}

	brandID := strings.TrimSpace(input.BrandID)
	request := strings.TrimSpace(input.Request)
	emailType := strings.ToLower(strings.TrimSpace(input.EmailType))
	if brandID == "" || request == "" || !domain.ValidEmailType(emailType) {
		return domain.Draft{}, domain.Revision{}, ErrInvalidDraftInput
	}

	brand, err := s.brands.GetByID(ctx, brandID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Draft{}, domain.Revision{}, ErrBrandNotFound
		}
		return domain.Draft{}, domain.Revision{}, fmt.Errorf("get brand: %w", err)
	}

	now := time.Now().UTC()
	draft := domain.Draft{
		ID:              uuid.NewString(),
		UserID:          userID,
		BrandID:         brand.ID,
		EmailType:       domain.EmailType(emailType),
		OriginalRequest: request,
		Audience:        strings.TrimSpace(input.Audience),
		KeyPoints:       trimPoints(input.KeyPoints),
		CallToAction:    strings.TrimSpace(input.CallToAction),
		CurrentVersion:  1,
		CreatedAt:       now,
	}

	started := time.Now()
	content, err := s.composer.Compose(ctx, briefFor(draft, brand))
	if err != nil {
		metrics.RecordComposeCall("compose", "failed", time.Since(started))
		if s.logger != nil {
			s.logger.Warn("compose draft failed", zap.Error(err), zap.String("brand_id", brand.ID))
		}
		return domain.Draft{}, domain.Revision{}, ErrComposeFailed
	}
	metrics.RecordComposeCall("compose", "success", time.Since(started))

	if err := s.drafts.Create(ctx, draft); err != nil {
		return domain.Draft{}, domain.Revision{}, fmt.Errorf("persist draft: %w", err)
	}

	revision := domain.Revision{
		ID:        uuid.NewString(),
		DraftID:   draft.ID,
		Version:   1,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.revisions.Create(ctx, revision); err != nil {
		return domain.Draft{}, domain.Revision{}, fmt.Errorf("persist revision: %w", err)
	}

	metrics.IncrementDraftGenerated(emailType)
	return draft, revision, nil
}

// SubmitFeedback guarda el comentario antes de regenerar. Si la regeneracion
// falla, el comentario queda persistido pero marcado invalido, para que la
// transcripcion lo muestre como error borrable. No se revierte.
func (s *DraftService) SubmitFeedback(ctx context.Context, userID, draftID, text string) (domain.Feedback, domain.Revision, error) {
	if s == nil || s.composer == nil || s.feedback == nil {
		return domain.Feedback{}, domain.Revision{}, ErrDraftServiceNotConfigured
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Feedback{}, domain.Revision{}, ErrInvalidFeedbackInput
	}

	draft, err := s.getOwnedDraft(ctx, draftID, userID)
	if err != nil {
		return domain.Feedback{}, domain.Revision{}, err
	}

	brand, err := s.brands.GetByID(ctx, draft.BrandID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feedback{}, domain.Revision{}, ErrBrandNotFound
		}
		return domain.Feedback{}, domain.Revision{}, fmt.Errorf("get brand: %w", err)
	}

	current, err := s.revisions.GetByVersion(ctx, draft.ID, draft.CurrentVersion)
	if err != nil {
		return domain.Feedback{}, domain.Revision{}, fmt.Errorf("get current revision: %w", err)
	}

	fb := domain.Feedback{
		ID:        uuid.NewString(),
		DraftID:   draft.ID,
		Text:      text,
		Valid:     true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return domain.Feedback{}, domain.Revision{}, fmt.Errorf("persist feedback: %w", err)
	}

	started := time.Now()
	content, err := s.composer.Revise(ctx, briefFor(draft, brand), current.Content, text)
	if err != nil {
		metrics.RecordComposeCall("revise", "failed", time.Since(started))
		if s.logger != nil {
			s.logger.Warn("revise draft failed", zap.Error(err), zap.String("draft_id", draft.ID))
		}
		if markErr := s.feedback.SetValidity(ctx, fb.ID, false); markErr != nil && s.logger != nil {
			s.logger.Error("mark feedback invalid failed", zap.Error(markErr), zap.String("feedback_id", fb.ID))
		}
		fb.Valid = false
		return fb, domain.Revision{}, ErrComposeFailed
	}
	metrics.RecordComposeCall("revise", "success", time.Since(started))

	revision := domain.Revision{
		ID:        uuid.NewString(),
		DraftID:   draft.ID,
		Version:   draft.CurrentVersion + 1,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.revisions.Create(ctx, revision); err != nil {
		return fb, domain.Revision{}, fmt.Errorf("persist revision: %w", err)
	}
	if err := s.drafts.UpdateCurrentVersion(ctx, draft.ID, revision.Version); err != nil {
		return fb, domain.Revision{}, fmt.Errorf("update current version: %w", err)
	}

	return fb, revision, nil
}

// LoadTranscript trae revisiones y feedback en paralelo y los une antes de
// armar la transcripcion. Si cualquiera de las dos lecturas falla, falla la
// carga completa: nunca se muestra una transcripcion parcial.
func (s *DraftService) LoadTranscript(ctx context.Context, userID, draftID string) ([]domain.DisplayMessage, error) {
	if s == nil || s.drafts == nil {
		return nil, ErrDraftServiceNotConfigured
	}

	draft, err := s.getOwnedDraft(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}

	var (
		wg     sync.WaitGroup
		revs   []domain.Revision
		items  []domain.Feedback
		revErr error
		fbErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		revs, revErr = s.revisions.ListByDraftID(ctx, draft.ID)
	}()
	go func() {
		defer wg.Done()
		items, fbErr = s.feedback.ListByDraftID(ctx, draft.ID)
	}()
	wg.Wait()

	if revErr != nil {
		metrics.IncrementTranscriptBuild("failed")
		return nil, fmt.Errorf("list revisions: %w", revErr)
	}
	if fbErr != nil {
		metrics.IncrementTranscriptBuild("failed")
		return nil, fmt.Errorf("list feedback: %w", fbErr)
	}

	messages := transcript.Build(draft.OriginalRequest, revs, items)
	metrics.IncrementTranscriptBuild("success")
	return messages, nil
}

// DeleteFeedback borra un unico comentario. No toca revisiones ni la
// numeracion de versiones.
func (s *DraftService) DeleteFeedback(ctx context.Context, userID, draftID, feedbackID string) error {
	if s == nil || s.feedback == nil {
		return ErrDraftServiceNotConfigured
	}

	draft, err := s.getOwnedDraft(ctx, draftID, userID)
	if err != nil {
		return err
	}

	if err := s.feedback.Delete(ctx, feedbackID, draft.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFeedbackNotFound
		}
		return fmt.Errorf("delete feedback: %w", err)
	}
	return nil
}

// Delete borra el borrador con sus revisiones y comentarios (cascada).
func (s *DraftService) Delete(ctx context.Context, userID, draftID string) error {
	if s == nil || s.drafts == nil {
		return ErrDraftServiceNotConfigured
	}

	draft, err := s.getOwnedDraft(ctx, draftID, userID)
	if err != nil {
		return err
	}

	if err := s.feedback.DeleteByDraftID(ctx, draft.ID); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if err := s.revisions.DeleteByDraftID(ctx, draft.ID); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	if err := s.drafts.Delete(ctx, draft.ID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDraftNotFound
		}
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *DraftService) List(ctx context.Context, userID string) ([]domain.Draft, error) {
	if s == nil || s.drafts == nil {
		return nil, ErrDraftServiceNotConfigured
	}
	return s.drafts.ListByUser(ctx, userID)
}

// Get devuelve el borrador junto con su revision vigente.
func (s *DraftService) Get(ctx context.Context, userID, draftID string) (domain.Draft, domain.Revision, error) {
	if s == nil || s.drafts == nil {
		return domain.Draft{}, domain.Revision{}, ErrDraftServiceNotConfigured
	}

	draft, err := s.getOwnedDraft(ctx, draftID, userID)
	if err != nil {
		return domain.Draft{}, domain.Revision{}, err
	}

	current, err := s.revisions.GetByVersion(ctx, draft.ID, draft.CurrentVersion)
	if err != nil {
		return domain.Draft{}, domain.Revision{}, fmt.Errorf("get current revision: %w", err)
	}
	return draft, current, nil
}

// Preview devuelve asunto y HTML renderizado de la revision vigente.
func (s *DraftService) Preview(ctx context.Context, userID, draftID string) (string, string, error) {
	_, current, err := s.Get(ctx, userID, draftID)
	if err != nil {
		return "", "", err
	}

	html, err := compose.RenderHTML(current.Content)
	if err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	return compose.ExtractSubject(current.Content), html, nil
}

// SendTest envia la revision vigente como correo de prueba al destinatario.
func (s *DraftService) SendTest(ctx context.Context, userID, draftID, toEmail string) error {
	if s == nil || s.emailSender == nil {
		return ErrEmailSendFailure
	}

	toEmail = normalizeEmail(toEmail)
	if toEmail == "" {
		return ErrInvalidEmail
	}

	subject, html, err := s.Preview(ctx, userID, draftID)
	if err != nil {
		return err
	}

	if err := s.emailSender.SendDraftCopy(ctx, toEmail, subject, html); err != nil {
		if s.logger != nil {
			s.logger.Warn("send draft copy failed", zap.Error(err), zap.String("draft_id", draftID))
		}
		return ErrEmailSendFailure
	}
	return nil
}

func (s *DraftService) getOwnedDraft(ctx context.Context, draftID, userID string) (domain.Draft, error) {
	draft, err := s.drafts.GetByID(ctx, strings.TrimSpace(draftID), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Draft{}, ErrDraftNotFound
		}
		return domain.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return draft, nil
}

func briefFor(draft domain.Draft, brand domain.Brand) domain.CampaignBrief {
	return domain.CampaignBrief{
		BrandName:    brand.Name,
		BrandVoice:   brand.Voice,
		BrandAbout:   brand.About,
		EmailType:    draft.EmailType,
		Request:      draft.OriginalRequest,
		Audience:     draft.Audience,
		KeyPoints:    draft.KeyPoints,
		CallToAction: draft.CallToAction,
	}
}

func trimPoints(points []string) []string {
	var kept []string
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return kept
}
