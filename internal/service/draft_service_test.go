package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/compose"
	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

type mockBrandRepo struct {
	brands map[string]domain.Brand
}

func newMockBrandRepo() *mockBrandRepo {
	return &mockBrandRepo{brands: make(map[string]domain.Brand)}
}

func (m *mockBrandRepo) Create(_ context.Context, brand domain.Brand) error {
	m.brands[brand.ID] = brand
	return nil
}

func (m *mockBrandRepo) GetByID(_ context.Context, id, userID string) (domain.Brand, error) {
	brand, ok := m.brands[id]
	if !ok || brand.UserID != userID {
		return domain.Brand{}, pgx.ErrNoRows
	}
	return brand, nil
}

func (m *mockBrandRepo) ListByUser(_ context.Context, userID string) ([]domain.Brand, error) {
	var out []domain.Brand
	for _, b := range m.brands {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockDraftRepo struct {
	drafts map[string]domain.Draft
}

func newMockDraftRepo() *mockDraftRepo {
	return &mockDraftRepo{drafts: make(map[string]domain.Draft)}
}

func (m *mockDraftRepo) Create(_ context.Context, draft domain.Draft) error {
	m.drafts[draft.ID] = draft
	return nil
}

func (m *mockDraftRepo) GetByID(_ context.Context, id, userID string) (domain.Draft, error) {
	draft, ok := m.drafts[id]
	if !ok || draft.UserID != userID {
		return domain.Draft{}, pgx.ErrNoRows
	}
	return draft, nil
}

func (m *mockDraftRepo) ListByUser(_ context.Context, userID string) ([]domain.Draft, error) {
	var out []domain.Draft
	for _, d := range m.drafts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDraftRepo) UpdateCurrentVersion(_ context.Context, id string, version int) error {
	draft, ok := m.drafts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	draft.CurrentVersion = version
	m.drafts[id] = draft
	return nil
}

func (m *mockDraftRepo) Delete(_ context.Context, id, userID string) error {
	draft, ok := m.drafts[id]
	if !ok || draft.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.drafts, id)
	return nil
}

type mockRevisionRepo struct {
	revisions []domain.Revision
	listErr   error
}

func (m *mockRevisionRepo) Create(_ context.Context, revision domain.Revision) error {
	m.revisions = append(m.revisions, revision)
	return nil
}

func (m *mockRevisionRepo) GetByVersion(_ context.Context, draftID string, version int) (domain.Revision, error) {
	for _, rev := range m.revisions {
		if rev.DraftID == draftID && rev.Version == version {
			return rev, nil
		}
	}
	return domain.Revision{}, pgx.ErrNoRows
}

func (m *mockRevisionRepo) ListByDraftID(_ context.Context, draftID string) ([]domain.Revision, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Revision
	for _, rev := range m.revisions {
		if rev.DraftID == draftID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (m *mockRevisionRepo) DeleteByDraftID(_ context.Context, draftID string) error {
	var kept []domain.Revision
	for _, rev := range m.revisions {
		if rev.DraftID != draftID {
			kept = append(kept, rev)
		}
	}
	m.revisions = kept
	return nil
}

type mockFeedbackRepo struct {
	items   []domain.Feedback
	listErr error
}

func (m *mockFeedbackRepo) Create(_ context.Context, feedback domain.Feedback) error {
	m.items = append(m.items, feedback)
	return nil
}

func (m *mockFeedbackRepo) GetByID(_ context.Context, id, draftID string) (domain.Feedback, error) {
	for _, fb := range m.items {
		if fb.ID == id && fb.DraftID == draftID {
			return fb, nil
		}
	}
	return domain.Feedback{}, pgx.ErrNoRows
}

func (m *mockFeedbackRepo) ListByDraftID(_ context.Context, draftID string) ([]domain.Feedback, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Feedback
	for _, fb := range m.items {
		if fb.DraftID == draftID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (m *mockFeedbackRepo) SetValidity(_ context.Context, id string, valid bool) error {
	for i, fb := range m.items {
		if fb.ID == id {
			m.items[i].Valid = valid
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockFeedbackRepo) Delete(_ context.Context, id, draftID string) error {
	for i, fb := range m.items {
		if fb.ID == id && fb.DraftID == draftID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockFeedbackRepo) DeleteByDraftID(_ context.Context, draftID string) error {
	var kept []domain.Feedback
	for _, fb := range m.items {
		if fb.DraftID != draftID {
			kept = append(kept, fb)
		}
	}
	m.items = kept
	return nil
}

type draftFixture struct {
	svc       *DraftService
	composer  *compose.MockComposer
	drafts    *mockDraftRepo
	brands    *mockBrandRepo
	revisions *mockRevisionRepo
	feedback  *mockFeedbackRepo
	sender    *mockEmailSender
}

func newDraftFixture() *draftFixture {
	f := &draftFixture{
		composer:  &compose.MockComposer{Content: "# Asunto\n\ncuerpo generado"},
		drafts:    newMockDraftRepo(),
		brands:    newMockBrandRepo(),
		revisions: &mockRevisionRepo{},
		feedback:  &mockFeedbackRepo{},
		sender:    &mockEmailSender{},
	}
	f.svc = NewDraftService(zap.NewNop(), f.composer, f.drafts, f.brands, f.revisions, f.feedback, f.sender)
	f.brands.brands["b1"] = domain.Brand{
		ID:        "b1",
		UserID:    "u1",
		Name:      "Glasspoint",
		Voice:     "warm",
		About:     "small batch glassware",
		CreatedAt: time.Now().UTC(),
	}
	return f
}

func startInput() StartDraftInput {
	return StartDraftInput{
		BrandID:      "b1",
		EmailType:    "promotion",
		Request:      "Announce the summer sale",
		Audience:     "returning customers",
		KeyPoints:    []string{"20% off", " free shipping "},
		CallToAction: "Shop now",
	}
}

func TestDraftServiceStart_CreatesDraftAndFirstRevision(t *testing.T) {
	f := newDraftFixture()

	draft, revision, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if draft.CurrentVersion != 1 {
		t.Fatalf("expected current_version 1, got %d", draft.CurrentVersion)
	}
	if revision.Version != 1 || revision.DraftID != draft.ID {
		t.Fatalf("unexpected revision: %+v", revision)
	}
	if revision.Content != "# Asunto\n\ncuerpo generado" {
		t.Fatalf("unexpected content: %q", revision.Content)
	}
	if f.composer.LastBrief.BrandName != "Glasspoint" || f.composer.LastBrief.Request != "Announce the summer sale" {
		t.Fatalf("unexpected brief: %+v", f.composer.LastBrief)
	}
	if len(f.composer.LastBrief.KeyPoints) != 2 || f.composer.LastBrief.KeyPoints[1] != "free shipping" {
		t.Fatalf("expected trimmed key points, got %v", f.composer.LastBrief.KeyPoints)
	}

	stored, err := f.drafts.GetByID(context.Background(), draft.ID, "u1")
	if err != nil {
		t.Fatalf("expected draft persisted, got %v", err)
	}
	if stored.EmailType != domain.EmailTypePromotion {
		t.Fatalf("expected promotion type, got %s", stored.EmailType)
	}
}

func TestDraftServiceStart_InvalidEmailType(t *testing.T) {
	f := newDraftFixture()
	input := startInput()
	input.EmailType = "spam"

	_, _, err := f.svc.Start(context.Background(), "u1", input)
	if !errors.Is(err, ErrInvalidDraftInput) {
		t.Fatalf("expected ErrInvalidDraftInput, got %v", err)
	}
}

func TestDraftServiceStart_BrandOwnedByOther(t *testing.T) {
	f := newDraftFixture()

	_, _, err := f.svc.Start(context.Background(), "u2", startInput())
	if !errors.Is(err, ErrBrandNotFound) {
		t.Fatalf("expected ErrBrandNotFound, got %v", err)
	}
}

func TestDraftServiceStart_ComposeFailurePersistsNothing(t *testing.T) {
	f := newDraftFixture()
	f.composer.Err = errors.New("model down")

	_, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if !errors.Is(err, ErrComposeFailed) {
		t.Fatalf("expected ErrComposeFailed, got %v", err)
	}
	if len(f.drafts.drafts) != 0 {
		t.Fatalf("expected no draft persisted after compose failure")
	}
	if len(f.revisions.revisions) != 0 {
		t.Fatalf("expected no revision persisted after compose failure")
	}
}

func TestDraftServiceSubmitFeedback_Success(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	f.composer.Content = "# Asunto v2\n\ncuerpo revisado"
	fb, revision, err := f.svc.SubmitFeedback(context.Background(), "u1", draft.ID, "hazlo mas corto")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !fb.Valid {
		t.Fatalf("expected feedback valid on success")
	}
	if revision.Version != 2 {
		t.Fatalf("expected version 2, got %d", revision.Version)
	}
	if f.composer.LastFeedback != "hazlo mas corto" {
		t.Fatalf("expected feedback forwarded to composer, got %q", f.composer.LastFeedback)
	}
	if f.composer.LastCurrent != "# Asunto\n\ncuerpo generado" {
		t.Fatalf("expected current content forwarded, got %q", f.composer.LastCurrent)
	}

	stored, err := f.drafts.GetByID(context.Background(), draft.ID, "u1")
	if err != nil {
		t.Fatalf("get draft failed: %v", err)
	}
	if stored.CurrentVersion != 2 {
		t.Fatalf("expected current_version bumped to 2, got %d", stored.CurrentVersion)
	}
}

func TestDraftServiceSubmitFeedback_ComposeFailureKeepsFeedbackInvalid(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	f.composer.Err = errors.New("model down")
	fb, _, err := f.svc.SubmitFeedback(context.Background(), "u1", draft.ID, "otro tono")
	if !errors.Is(err, ErrComposeFailed) {
		t.Fatalf("expected ErrComposeFailed, got %v", err)
	}
	if fb.Valid {
		t.Fatalf("expected returned feedback marked invalid")
	}

	items, err := f.feedback.ListByDraftID(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("list feedback failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected feedback to stay persisted, got %d items", len(items))
	}
	if items[0].Valid {
		t.Fatalf("expected persisted feedback marked invalid")
	}

	stored, _ := f.drafts.GetByID(context.Background(), draft.ID, "u1")
	if stored.CurrentVersion != 1 {
		t.Fatalf("expected current_version unchanged, got %d", stored.CurrentVersion)
	}
	if len(f.revisions.revisions) != 1 {
		t.Fatalf("expected no new revision, got %d", len(f.revisions.revisions))
	}
}

func TestDraftServiceLoadTranscript(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	f.composer.Content = "cuerpo v2"
	if _, _, err := f.svc.SubmitFeedback(context.Background(), "u1", draft.ID, "mas corto"); err != nil {
		t.Fatalf("submit feedback failed: %v", err)
	}

	messages, err := f.svc.LoadTranscript(context.Background(), "u1", draft.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// pedido original + v1 + feedback + v2
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d: %+v", len(messages), messages)
	}
	if messages[0].Kind != domain.KindRequest || messages[0].Text != "Announce the summer sale" {
		t.Fatalf("unexpected first message: %+v", messages[0])
	}
	if messages[2].Kind != domain.KindFeedback || messages[2].Text != "mas corto" {
		t.Fatalf("expected feedback between revisions, got %+v", messages[2])
	}
}

func TestDraftServiceLoadTranscript_FetchFailureAbortsWhole(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	f.feedback.listErr = errors.New("network down")
	if _, err := f.svc.LoadTranscript(context.Background(), "u1", draft.ID); err == nil {
		t.Fatalf("expected transcript load to fail when feedback fetch fails")
	}

	f.feedback.listErr = nil
	f.revisions.listErr = errors.New("network down")
	if _, err := f.svc.LoadTranscript(context.Background(), "u1", draft.ID); err == nil {
		t.Fatalf("expected transcript load to fail when revision fetch fails")
	}
}

func TestDraftServiceLoadTranscript_OtherUsersDraft(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	_, err = f.svc.LoadTranscript(context.Background(), "u2", draft.ID)
	if !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound for foreign draft, got %v", err)
	}
}

func TestDraftServiceDeleteFeedback(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	fb, _, err := f.svc.SubmitFeedback(context.Background(), "u1", draft.ID, "mas corto")
	if err != nil {
		t.Fatalf("submit feedback failed: %v", err)
	}

	if err := f.svc.DeleteFeedback(context.Background(), "u1", draft.ID, fb.ID); err != nil {
		t.Fatalf("expected delete success, got %v", err)
	}
	if err := f.svc.DeleteFeedback(context.Background(), "u1", draft.ID, fb.ID); !errors.Is(err, ErrFeedbackNotFound) {
		t.Fatalf("expected ErrFeedbackNotFound on second delete, got %v", err)
	}

	if len(f.revisions.revisions) != 2 {
		t.Fatalf("expected revisions untouched by feedback delete, got %d", len(f.revisions.revisions))
	}
}

func TestDraftServiceDelete_Cascades(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, _, err := f.svc.SubmitFeedback(context.Background(), "u1", draft.ID, "mas corto"); err != nil {
		t.Fatalf("submit feedback failed: %v", err)
	}

	if err := f.svc.Delete(context.Background(), "u1", draft.ID); err != nil {
		t.Fatalf("expected delete success, got %v", err)
	}
	if len(f.drafts.drafts) != 0 {
		t.Fatalf("expected draft removed")
	}
	if len(f.revisions.revisions) != 0 {
		t.Fatalf("expected revisions removed in cascade")
	}
	if len(f.feedback.items) != 0 {
		t.Fatalf("expected feedback removed in cascade")
	}
}

func TestDraftServiceSendTest(t *testing.T) {
	f := newDraftFixture()
	draft, _, err := f.svc.Start(context.Background(), "u1", startInput())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := f.svc.SendTest(context.Background(), "u1", draft.ID, "Dest@Example.com"); err != nil {
		t.Fatalf("expected send success, got %v", err)
	}
	if f.sender.lastTo != "dest@example.com" {
		t.Fatalf("expected normalized recipient, got %q", f.sender.lastTo)
	}
	if f.sender.lastSubject != "Asunto" {
		t.Fatalf("expected subject extracted from heading, got %q", f.sender.lastSubject)
	}
	if f.sender.lastHTML == "" {
		t.Fatalf("expected html body")
	}
}
