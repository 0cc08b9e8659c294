package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/service"
)

// DraftHandler mantiene dependencias para endpoints de borradores.
type DraftHandler struct {
	logger    *zap.Logger
	draftServ *service.DraftService
}

func NewDraftHandler(logger *zap.Logger, draftServ *service.DraftService) *DraftHandler {
	return &DraftHandler{
		logger:    logger,
		draftServ: draftServ,
	}
}

// GenerateDraft maneja POST /drafts: compone la primera version y crea el
// borrador con su revision 1.
func (h *DraftHandler) GenerateDraft(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		BrandID      string   `json:"brand_id" binding:"required"`
		EmailType    string   `json:"email_type" binding:"required"`
		Request      string   `json:"request" binding:"required"`
		Audience     string   `json:"audience"`
		KeyPoints    []string `json:"key_points"`
		CallToAction string   `json:"call_to_action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid generate draft request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	draft, revision, err := h.draftServ.Start(c.Request.Context(), claims.UserID, service.StartDraftInput{
		BrandID:      req.BrandID,
		EmailType:    req.EmailType,
		Request:      req.Request,
		Audience:     req.Audience,
		KeyPoints:    req.KeyPoints,
		CallToAction: req.CallToAction,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDraftInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, service.ErrBrandNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		case errors.Is(err, service.ErrComposeFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not generate email"})
		default:
			h.logger.Error("generate draft failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate draft"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"draft": draft, "revision": revision})
}

// ListDrafts maneja GET /drafts.
func (h *DraftHandler) ListDrafts(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	drafts, err := h.draftServ.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list drafts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list drafts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

// GetDraft maneja GET /drafts/:id: borrador mas su revision vigente.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	draft, revision, err := h.draftServ.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.logger.Error("get draft failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft, "revision": revision})
}

// GetTranscript maneja GET /drafts/:id/transcript.
func (h *DraftHandler) GetTranscript(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	messages, err := h.draftServ.LoadTranscript(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.logger.Error("load transcript failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load transcript"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetPreview maneja GET /drafts/:id/preview: asunto y HTML renderizado.
func (h *DraftHandler) GetPreview(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	subject, html, err := h.draftServ.Preview(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.logger.Error("preview draft failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build preview"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subject, "html": html})
}

// SubmitFeedback maneja POST /drafts/:id/feedback. Si la regeneracion falla,
// el comentario ya quedo guardado marcado invalido y se devuelve junto con
// el error para que el cliente lo muestre con opcion de borrado.
func (h *DraftHandler) SubmitFeedback(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feedback request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	fb, revision, err := h.draftServ.SubmitFeedback(c.Request.Context(), claims.UserID, c.Param("id"), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFeedbackInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, service.ErrDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		case errors.Is(err, service.ErrComposeFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not regenerate email", "feedback": fb})
		default:
			h.logger.Error("submit feedback failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit feedback"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"feedback": fb, "revision": revision})
}

// DeleteFeedback maneja DELETE /drafts/:id/feedback/:feedbackID.
func (h *DraftHandler) DeleteFeedback(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	err := h.draftServ.DeleteFeedback(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("feedbackID"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		case errors.Is(err, service.ErrFeedbackNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
		default:
			h.logger.Error("delete feedback failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete feedback"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// SendTest maneja POST /drafts/:id/send-test.
func (h *DraftHandler) SendTest(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send test request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.draftServ.SendTest(c.Request.Context(), claims.UserID, c.Param("id"), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		case errors.Is(err, service.ErrDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
		default:
			h.logger.Error("send test failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send test email"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// DeleteDraft maneja DELETE /drafts/:id.
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	err := h.draftServ.Delete(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		h.logger.Error("delete draft failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete draft"})
		return
	}

	c.Status(http.StatusNoContent)
}
