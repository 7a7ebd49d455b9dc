package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"formassist/internal/model"
	"formassist/internal/service"
	"formassist/internal/transport/rest/middleware"
)

// ExportHandler serves session downloads
type ExportHandler struct {
	exportSvc *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportSvc *service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Export handles GET /v1/session/export
//
// @Summary Download the session as JSON or a Markdown transcript
// @Produce json
// @Produce text/markdown
// @Security SessionToken
// @Param format query string false "json (default) or transcript"
// @Success 200 {file} file
// @Router /session/export [get]
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := model.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = model.ExportJSON
	}
	if format != model.ExportJSON && format != model.ExportTranscript {
		writeError(w, http.StatusBadRequest, "format must be json or transcript")
		return
	}

	file, err := h.exportSvc.Export(r.Context(), middleware.GetSessionID(r.Context()), format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
