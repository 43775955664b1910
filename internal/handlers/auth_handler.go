package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SJJP-F-2025/requests-service/internal/services"
	"github.com/SJJP-F-2025/requests-service/internal/utils"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	validator   *validator.Validator
}

func NewAuthHandler(authService services.AuthService, validator *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		validator:   validator,
	}
}

// Login authenticates a PS number and password pair and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.PSNumber, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Logout closes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("session_token")
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the session bound to the bearer token, including the IDs of
// requests still pending remote sync.
func (h *AuthHandler) Me(c *gin.Context) {
	token := c.GetString("session_token")
	session, err := h.authService.Session(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
