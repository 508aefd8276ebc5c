package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/service"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
	"github.com/saberes-app/gradebook-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, actor service.Actor, teacherAssignmentID, periodID, format string) (*dto.ExportResult, error)
	OpenDownload(token string) (*os.File, string, error)
}

// ExportHandler exposes gradesheet export endpoints.
type ExportHandler struct {
	exports exportService
	metrics *service.MetricsService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports exportService, metrics *service.MetricsService) *ExportHandler {
	return &ExportHandler{exports: exports, metrics: metrics}
}

// Export godoc
// @Summary Render a gradesheet export and return a signed download URL
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param teacher_assignment_id query string true "Teacher assignment"
// @Param period_id query string true "Grading period"
// @Param format query string true "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /gradebook/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.exports.Export(c.Request.Context(), actor, c.Query("teacher_assignment_id"), c.Query("period_id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordExport(result.Format)
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a previously rendered export via its signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, relPath, err := h.exports.OpenDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}
	contentType := "application/octet-stream"
	switch filepath.Ext(relPath) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
