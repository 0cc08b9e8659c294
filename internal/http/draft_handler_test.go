package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/compose"
	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
	"github.com/ahsrafiq/glass-chat-craft/internal/service"
)

type mockBrandRepo struct {
	brands map[string]domain.Brand
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
	items []domain.Feedback
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

// apiFixture levanta el router completo con repos en memoria, una marca
// sembrada para u1 y un token de acceso listo para usar.
type apiFixture struct {
	router    *gin.Engine
	jwtServ   *service.JWTService
	token     string
	composer  *compose.MockComposer
	drafts    *mockDraftRepo
	brands    *mockBrandRepo
	revisions *mockRevisionRepo
	feedback  *mockFeedbackRepo
	sender    *mockEmailSender
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	composer := &compose.MockComposer{Content: "# Asunto\n\ncuerpo generado"}
	brands := &mockBrandRepo{brands: map[string]domain.Brand{
		"b1": {ID: "b1", UserID: "u1", Name: "Glasspoint", Voice: "cercana y directa", CreatedAt: time.Now().UTC()},
	}}
	drafts := &mockDraftRepo{drafts: make(map[string]domain.Draft)}
	revisions := &mockRevisionRepo{}
	feedback := &mockFeedbackRepo{}
	sender := &mockEmailSender{}

	logger := zap.NewNop()
	draftSvc := service.NewDraftService(logger, composer, drafts, brands, revisions, feedback, sender)
	brandSvc := service.NewBrandService(brands)
	userSvc := service.NewUserService(logger, newMockUserRepo(), sender, nil)
	jwtSvc := newTestJWTService()

	router := NewRouter(
		logger,
		jwtSvc,
		NewUserHandler(logger, userSvc, jwtSvc),
		NewBrandHandler(logger, brandSvc),
		NewDraftHandler(logger, draftSvc),
	)

	pair, err := jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	return &apiFixture{
		router:    router,
		jwtServ:   jwtSvc,
		token:     pair.AccessToken,
		composer:  composer,
		drafts:    drafts,
		brands:    brands,
		revisions: revisions,
		feedback:  feedback,
		sender:    sender,
	}
}

func (f *apiFixture) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	pair, err := f.jwtServ.GeneratePair(domain.User{ID: userID, Email: userID + "@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return pair.AccessToken
}

func (f *apiFixture) generateDraft(t *testing.T) string {
	t.Helper()
	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts", map[string]any{
		"brand_id":   "b1",
		"email_type": "promotion",
		"request":    "anuncia el descuento de agosto",
	}, f.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Draft domain.Draft `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Draft.ID == "" {
		t.Fatalf("expected draft id in response")
	}
	return resp.Draft.ID
}

func TestDraftHandlerGenerate_CreatesDraftAndRevision(t *testing.T) {
	f := newAPIFixture(t)

	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts", map[string]any{
		"brand_id":       "b1",
		"email_type":     "promotion",
		"request":        "anuncia el descuento de agosto",
		"audience":       "clientes actuales",
		"key_points":     []string{"20% off", "solo esta semana"},
		"call_to_action": "Compra ahora",
	}, f.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Draft    domain.Draft    `json:"draft"`
		Revision domain.Revision `json:"revision"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Draft.CurrentVersion != 1 || resp.Revision.Version != 1 {
		t.Fatalf("expected version 1, got draft=%d revision=%d", resp.Draft.CurrentVersion, resp.Revision.Version)
	}
	if resp.Revision.Content != "# Asunto\n\ncuerpo generado" {
		t.Fatalf("unexpected revision content: %q", resp.Revision.Content)
	}
	if f.composer.Calls != 1 {
		t.Fatalf("expected 1 compose call, got %d", f.composer.Calls)
	}
	if f.composer.LastBrief.BrandName != "Glasspoint" {
		t.Fatalf("expected brand name in brief, got %q", f.composer.LastBrief.BrandName)
	}
}

func TestDraftHandlerGenerate_RequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	rec := performRequest(f.router, http.MethodPost, "/drafts", map[string]any{
		"brand_id":   "b1",
		"email_type": "promotion",
		"request":    "anuncia el descuento",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestDraftHandlerGenerate_UnknownBrand(t *testing.T) {
	f := newAPIFixture(t)

	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts", map[string]any{
		"brand_id":   "missing",
		"email_type": "promotion",
		"request":    "anuncia el descuento",
	}, f.token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDraftHandlerGenerate_ComposeFailure(t *testing.T) {
	f := newAPIFixture(t)
	f.composer.Err = errors.New("provider down")

	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts", map[string]any{
		"brand_id":   "b1",
		"email_type": "promotion",
		"request":    "anuncia el descuento",
	}, f.token)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	if len(f.drafts.drafts) != 0 || len(f.revisions.revisions) != 0 {
		t.Fatalf("expected nothing persisted on compose failure")
	}
}

func TestDraftHandlerSubmitFeedback_CreatesNewRevision(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	f.composer.Content = "# Asunto\n\ncuerpo mas corto"
	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts/"+draftID+"/feedback", map[string]string{
		"text": "hazlo mas corto",
	}, f.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Feedback domain.Feedback `json:"feedback"`
		Revision domain.Revision `json:"revision"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Feedback.Valid {
		t.Fatalf("expected feedback marked valid")
	}
	if resp.Revision.Version != 2 {
		t.Fatalf("expected revision version 2, got %d", resp.Revision.Version)
	}
	if f.composer.LastFeedback != "hazlo mas corto" {
		t.Fatalf("expected feedback forwarded to composer, got %q", f.composer.LastFeedback)
	}
}

func TestDraftHandlerSubmitFeedback_ComposeFailureReturnsInvalidFeedback(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	f.composer.Err = errors.New("provider down")
	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts/"+draftID+"/feedback", map[string]string{
		"text": "hazlo mas corto",
	}, f.token)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}

	// El comentario queda persistido e invalido, y viaja en el body para que
	// el cliente lo muestre con opcion de borrado.
	var resp struct {
		Feedback domain.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Feedback.ID == "" || resp.Feedback.Valid {
		t.Fatalf("expected persisted invalid feedback in response, got %+v", resp.Feedback)
	}
	if len(f.feedback.items) != 1 || f.feedback.items[0].Valid {
		t.Fatalf("expected stored feedback marked invalid")
	}
	if len(f.revisions.revisions) != 1 {
		t.Fatalf("expected no new revision, got %d", len(f.revisions.revisions))
	}
}

func TestDraftHandlerTranscript_InterleavesMessages(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	if rec := performAuthedRequest(f.router, http.MethodPost, "/drafts/"+draftID+"/feedback", map[string]string{
		"text": "hazlo mas corto",
	}, f.token); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	rec := performAuthedRequest(f.router, http.MethodGet, "/drafts/"+draftID+"/transcript", nil, f.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Messages []domain.DisplayMessage `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	kinds := make([]domain.MessageKind, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		kinds = append(kinds, msg.Kind)
	}
	want := []domain.MessageKind{domain.KindRequest, domain.KindRevision, domain.KindFeedback, domain.KindRevision}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d messages, got %d (%v)", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("message %d: expected kind %q, got %q", i, want[i], kinds[i])
		}
	}
}

func TestDraftHandlerTranscript_OtherUsersDraftHidden(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	rec := performAuthedRequest(f.router, http.MethodGet, "/drafts/"+draftID+"/transcript", nil, f.tokenFor(t, "u2"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDraftHandlerDeleteFeedback(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts/"+draftID+"/feedback", map[string]string{
		"text": "hazlo mas corto",
	}, f.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var created struct {
		Feedback domain.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	path := "/drafts/" + draftID + "/feedback/" + created.Feedback.ID
	if rec := performAuthedRequest(f.router, http.MethodDelete, path, nil, f.token); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec := performAuthedRequest(f.router, http.MethodDelete, path, nil, f.token); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on repeat delete, got %d", rec.Code)
	}
}

func TestDraftHandlerPreview_RendersHTML(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	rec := performAuthedRequest(f.router, http.MethodGet, "/drafts/"+draftID+"/preview", nil, f.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Subject != "Asunto" {
		t.Fatalf("expected subject from heading, got %q", resp.Subject)
	}
	if resp.HTML == "" {
		t.Fatalf("expected rendered html in response")
	}
}

func TestDraftHandlerSendTest_DeliversCopy(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts/"+draftID+"/send-test", map[string]string{
		"email": "Someone@Example.com",
	}, f.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.sender.lastTo != "someone@example.com" {
		t.Fatalf("expected normalized recipient, got %q", f.sender.lastTo)
	}
	if f.sender.lastSubject != "Asunto" {
		t.Fatalf("expected subject from draft, got %q", f.sender.lastSubject)
	}
}

func TestDraftHandlerSendTest_EmailFailure(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	f.sender.err = errors.New("smtp down")
	rec := performAuthedRequest(f.router, http.MethodPost, "/drafts/"+draftID+"/send-test", map[string]string{
		"email": "someone@example.com",
	}, f.token)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestDraftHandlerDeleteDraft_RemovesEverything(t *testing.T) {
	f := newAPIFixture(t)
	draftID := f.generateDraft(t)

	if rec := performAuthedRequest(f.router, http.MethodPost, "/drafts/"+draftID+"/feedback", map[string]string{
		"text": "hazlo mas corto",
	}, f.token); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	if rec := performAuthedRequest(f.router, http.MethodDelete, "/drafts/"+draftID, nil, f.token); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec := performAuthedRequest(f.router, http.MethodGet, "/drafts/"+draftID, nil, f.token); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rec.Code)
	}
	if len(f.revisions.revisions) != 0 || len(f.feedback.items) != 0 {
		t.Fatalf("expected revisions and feedback removed with the draft")
	}
}

func TestDraftHandlerList_OnlyOwnDrafts(t *testing.T) {
	f := newAPIFixture(t)
	f.generateDraft(t)

	rec := performAuthedRequest(f.router, http.MethodGet, "/drafts", nil, f.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var mine struct {
		Drafts []domain.Draft `json:"drafts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(mine.Drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(mine.Drafts))
	}

	rec = performAuthedRequest(f.router, http.MethodGet, "/drafts", nil, f.tokenFor(t, "u2"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var others struct {
		Drafts []domain.Draft `json:"drafts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &others); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(others.Drafts) != 0 {
		t.Fatalf("expected no drafts for another user, got %d", len(others.Drafts))
	}
}
