package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SJJP-F-2025/requests-service/internal/services"
	"github.com/SJJP-F-2025/requests-service/internal/utils"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

type MaterialHandler struct {
	BaseHandler
	materialService services.MaterialService
}

func NewMaterialHandler(materialService services.MaterialService, logger utils.Logger) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler:     NewBaseHandler(logger),
		materialService: materialService,
	}
}

// ListMaterials returns the whole catalog, optionally filtered by category.
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		c.JSON(http.StatusOK, gin.H{"materials": h.materialService.ByCategory(c.Request.Context(), category)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": h.materialService.List(c.Request.Context())})
}

// ListCategories returns the distinct catalog categories.
func (h *MaterialHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.materialService.Categories(c.Request.Context())})
}

// SaveMaterials replaces the catalog (admin only).
func (h *MaterialHandler) SaveMaterials(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var payload struct {
		Materials []validator.MaterialRow `json:"materials"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.materialService.Save(c.Request.Context(), id, payload.Materials)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
