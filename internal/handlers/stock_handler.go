package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SJJP-F-2025/requests-service/internal/services"
	"github.com/SJJP-F-2025/requests-service/internal/utils"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

type StockHandler struct {
	BaseHandler
	stockService services.StockService
}

func NewStockHandler(stockService services.StockService, logger utils.Logger) *StockHandler {
	return &StockHandler{
		BaseHandler:  NewBaseHandler(logger),
		stockService: stockService,
	}
}

// ListStock returns the stock rows visible to the caller, optionally scoped
// to one school via ?school_id=.
func (h *StockHandler) ListStock(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}
	rows := h.stockService.Visible(c.Request.Context(), id, c.Query("school_id"))
	c.JSON(http.StatusOK, gin.H{"stock": rows})
}

// StockSummary returns the project/type/size aggregation of the visible
// stock.
func (h *StockHandler) StockSummary(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}
	summary := h.stockService.Summary(c.Request.Context(), id, c.Query("school_id"))
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// SaveStock merges a batch of stock rows into the local collection.
func (h *StockHandler) SaveStock(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var payload struct {
		Stock []validator.StockEdit `json:"stock"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.stockService.Save(c.Request.Context(), id, payload.Stock)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
