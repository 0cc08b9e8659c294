package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/service"
)

// BrandHandler mantiene dependencias para endpoints de marcas.
type BrandHandler struct {
	logger    *zap.Logger
	brandServ *service.BrandService
}

func NewBrandHandler(logger *zap.Logger, brandServ *service.BrandService) *BrandHandler {
	return &BrandHandler{
		logger:    logger,
		brandServ: brandServ,
	}
}

// CreateBrand maneja POST /brands.
func (h *BrandHandler) CreateBrand(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Voice string `json:"voice"`
		About string `json:"about"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create brand request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	brand, err := h.brandServ.Create(c.Request.Context(), claims.UserID, req.Name, req.Voice, req.About)
	if err != nil {
		if errors.Is(err, service.ErrBrandInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.logger.Error("create brand failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create brand"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"brand": brand})
}

// ListBrands maneja GET /brands.
func (h *BrandHandler) ListBrands(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	brands, err := h.brandServ.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list brands failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list brands"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// GetBrand maneja GET /brands/:id.
func (h *BrandHandler) GetBrand(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	brand, err := h.brandServ.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBrandNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
			return
		}
		h.logger.Error("get brand failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get brand"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brand": brand})
}
