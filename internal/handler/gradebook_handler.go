package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/models"
	"github.com/saberes-app/gradebook-api/internal/service"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
	"github.com/saberes-app/gradebook-api/pkg/response"
)

type gradebookService interface {
	Snapshot(ctx context.Context, actor service.Actor, teacherAssignmentID, periodID string) (*models.GradebookSnapshot, error)
	BulkUpsertScores(ctx context.Context, actor service.Actor, req dto.BulkScoresRequest) (*dto.BulkScoresResult, error)
	BulkUpsertActivityScores(ctx context.Context, actor service.Actor, req dto.BulkActivityScoresRequest) (*dto.BulkScoresResult, error)
	Recalculate(ctx context.Context, actor service.Actor, req dto.RecalculateRequest) error
}

// GradebookHandler exposes the gradebook endpoints.
type GradebookHandler struct {
	gradebook gradebookService
	metrics   *service.MetricsService
}

// NewGradebookHandler constructs handler.
func NewGradebookHandler(gradebook gradebookService, metrics *service.MetricsService) *GradebookHandler {
	return &GradebookHandler{gradebook: gradebook, metrics: metrics}
}

// Snapshot godoc
// @Summary Load the full gradebook for one assignment and period
// @Tags Gradebook
// @Produce json
// @Security BearerAuth
// @Param teacher_assignment_id query string true "Teacher assignment"
// @Param period_id query string true "Grading period"
// @Success 200 {object} response.Envelope
// @Router /gradebook [get]
func (h *GradebookHandler) Snapshot(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	teacherAssignmentID := c.Query("teacher_assignment_id")
	periodID := c.Query("period_id")
	if teacherAssignmentID == "" || periodID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "teacher_assignment_id and period_id are required"))
		return
	}
	snapshot, err := h.gradebook.Snapshot(c.Request.Context(), actor, teacherAssignmentID, periodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// BulkScores godoc
// @Summary Bulk upsert achievement scores
// @Tags Gradebook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkScoresRequest true "Score batch"
// @Success 200 {object} response.Envelope
// @Router /gradebook/scores/bulk [post]
func (h *GradebookHandler) BulkScores(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BulkScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.gradebook.BulkUpsertScores(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordScoreWrites(result.Updated, len(result.Blocked))
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkActivityScores godoc
// @Summary Bulk upsert activity-column scores
// @Tags Gradebook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkActivityScoresRequest true "Score batch"
// @Success 200 {object} response.Envelope
// @Router /gradebook/activity-scores/bulk [post]
func (h *GradebookHandler) BulkActivityScores(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BulkActivityScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.gradebook.BulkUpsertActivityScores(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordScoreWrites(result.Updated, len(result.Blocked))
	response.JSON(c, http.StatusOK, result, nil)
}

// Recalculate godoc
// @Summary Queue a full recalculation of a gradesheet's final scores
// @Tags Gradebook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecalculateRequest true "Scope"
// @Success 202 {object} response.Envelope
// @Router /gradebook/recalculate [post]
func (h *GradebookHandler) Recalculate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.gradebook.Recalculate(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "queued"}, nil)
}
