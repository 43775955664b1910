package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SJJP-F-2025/requests-service/internal/services"
	"github.com/SJJP-F-2025/requests-service/internal/utils"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportRequests streams the requests report. ?format=xlsx selects the
// workbook rendering, anything else gets CSV.
func (h *ExportHandler) ExportRequests(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var (
		content     []byte
		filename    string
		contentType string
		err         error
	)
	if c.Query("format") == "xlsx" {
		content, filename, err = h.exportService.RequestsXLSX(c.Request.Context(), id)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	} else {
		content, filename, err = h.exportService.RequestsCSV(c.Request.Context(), id)
		contentType = "text/csv"
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}
