package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SJJP-F-2025/requests-service/internal/services"
	"github.com/SJJP-F-2025/requests-service/internal/utils"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// ErrorResponse is the error envelope every handler returns.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// BaseHandler carries the shared logging and error translation helpers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs with the request-scoped logger when the middleware put one
// in the context.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.contextLogger(c).Info(msg, args...)
}

func (h *BaseHandler) contextLogger(c *gin.Context) utils.Logger {
	if l := utils.FromContext(c.Request.Context()); l != nil {
		return l
	}
	return h.logger
}

// handleServiceError maps service failures to HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: verrs})
	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrRemoteNotConfigured):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrNoRowsSelected):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		h.contextLogger(c).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
