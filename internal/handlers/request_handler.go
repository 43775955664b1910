package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SJJP-F-2025/requests-service/internal/services"
	"github.com/SJJP-F-2025/requests-service/internal/utils"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

type RequestHandler struct {
	BaseHandler
	requestService services.RequestService
	authService    services.AuthService
	validator      *validator.Validator
}

func NewRequestHandler(
	requestService services.RequestService,
	authService services.AuthService,
	validator *validator.Validator,
	logger utils.Logger,
) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    NewBaseHandler(logger),
		requestService: requestService,
		authService:    authService,
		validator:      validator,
	}
}

// ListRequests returns the requests visible to the caller, with the serving
// source and any remote degradation warning.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}
	list := h.requestService.Visible(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{
		"requests": list.Requests,
		"source":   list.Source,
		"warning":  list.RemoteWarning,
	})
}

// SubmitRequests creates a batch of new requests. Records that reached the
// local store but not the remote one are marked as unsynced on the session.
func (h *RequestHandler) SubmitRequests(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var payload struct {
		Items []validator.RequestItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.requestService.Submit(c.Request.Context(), id, payload.Items)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondPersist(c, http.StatusCreated, result)
}

// SaveEdits applies grid edits to pending requests.
func (h *RequestHandler) SaveEdits(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var payload struct {
		Edits []validator.RequestEdit `json:"edits"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.requestService.SaveEdits(c.Request.Context(), id, payload.Edits)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondPersist(c, http.StatusOK, result)
}

// UpdateStatus applies one status to a batch of requests (admin only).
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var upd validator.StatusUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.requestService.UpdateStatus(c.Request.Context(), id, upd)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteRequests removes a batch of requests.
func (h *RequestHandler) DeleteRequests(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.requestService.Delete(c.Request.Context(), id, payload.IDs)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondPersist renders a PersistResult, translating the partial-failure
// case into a 200-with-warning body so the saved count is never hidden
// behind an error status.
func (h *RequestHandler) respondPersist(c *gin.Context, okStatus int, result services.PersistResult) {
	body := gin.H{"saved": result.Saved, "synced": result.Synced}
	token := c.GetString("session_token")
	if result.Err != nil {
		body["warning"] = "saved locally, remote sync failed: " + result.Err.Error()
		body["unsynced_ids"] = result.UnsyncedIDs
		if token != "" && len(result.UnsyncedIDs) > 0 {
			// Flag the session so the UI can show the rows as pending sync.
			if err := h.authService.MarkUnsynced(c.Request.Context(), token, result.UnsyncedIDs...); err != nil {
				h.contextLogger(c).Warn("could not mark session unsynced", "error", err)
			}
		}
	} else if token != "" && len(result.SyncedIDs) > 0 {
		if err := h.authService.ClearUnsynced(c.Request.Context(), token, result.SyncedIDs...); err != nil {
			h.contextLogger(c).Warn("could not clear unsynced flags", "error", err)
		}
	}
	c.JSON(okStatus, body)
}
