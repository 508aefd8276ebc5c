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

type editGrantService interface {
	MyGrants(ctx context.Context, actor service.Actor, teacherAssignmentID, periodID string) ([]models.EditGrant, error)
	CreateRequest(ctx context.Context, actor service.Actor, req dto.CreateEditRequestRequest) (*models.EditRequest, error)
	ListRequests(ctx context.Context, actor service.Actor, filter models.EditRequestFilter) ([]models.EditRequest, error)
	Approve(ctx context.Context, actor service.Actor, requestID string, req dto.ApproveEditRequestRequest) (*models.EditGrant, error)
	Reject(ctx context.Context, actor service.Actor, requestID string) error
}

// EditGrantHandler exposes edit grant and edit request endpoints.
type EditGrantHandler struct {
	grants editGrantService
}

// NewEditGrantHandler constructs handler.
func NewEditGrantHandler(grants editGrantService) *EditGrantHandler {
	return &EditGrantHandler{grants: grants}
}

// MyGrants godoc
// @Summary List the caller's active edit grants for a gradesheet
// @Tags EditGrants
// @Produce json
// @Security BearerAuth
// @Param teacher_assignment_id query string true "Teacher assignment"
// @Param period_id query string true "Grading period"
// @Success 200 {object} response.Envelope
// @Router /edit-grants/mine [get]
func (h *EditGrantHandler) MyGrants(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grants, err := h.grants.MyGrants(c.Request.Context(), actor, c.Query("teacher_assignment_id"), c.Query("period_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants, nil)
}

// CreateRequest godoc
// @Summary Open a petition to edit a closed grading window
// @Tags EditRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateEditRequestRequest true "Request"
// @Success 201 {object} response.Envelope
// @Router /edit-requests [post]
func (h *EditGrantHandler) CreateRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateEditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.grants.CreateRequest(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// ListRequests godoc
// @Summary List edit requests visible to the caller
// @Tags EditRequests
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param period_id query string false "Grading period"
// @Success 200 {object} response.Envelope
// @Router /edit-requests [get]
func (h *EditGrantHandler) ListRequests(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.EditRequestFilter{
		PeriodID: c.Query("period_id"),
		Status:   models.EditRequestStatus(c.Query("status")),
	}
	rows, err := h.grants.ListRequests(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Approve godoc
// @Summary Approve a pending edit request and materialise a grant
// @Tags EditRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param payload body dto.ApproveEditRequestRequest true "Grant terms"
// @Success 200 {object} response.Envelope
// @Router /edit-requests/{id}/approve [post]
func (h *EditGrantHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ApproveEditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grant, err := h.grants.Approve(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grant, nil)
}

// Reject godoc
// @Summary Reject a pending edit request
// @Tags EditRequests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204
// @Router /edit-requests/{id}/reject [post]
func (h *EditGrantHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.grants.Reject(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
