package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
)

type grantStore interface {
	Create(ctx context.Context, grant *models.EditGrant) error
	ListActive(ctx context.Context, teacherID, teacherAssignmentID, periodID string, now time.Time) ([]models.EditGrant, error)
}

type editRequestStore interface {
	Create(ctx context.Context, req *models.EditRequest) error
	FindByID(ctx context.Context, id string) (*models.EditRequest, error)
	List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.EditRequestStatus, reviewerID string, reviewedAt time.Time) error
}

// EditGrantService manages edit-window petitions and the grants that come
// out of approving them.
type EditGrantService struct {
	grants      grantStore
	requests    editRequestStore
	periods     periodReader
	assignments assignmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEditGrantService constructs an EditGrantService.
func NewEditGrantService(grants grantStore, requests editRequestStore, periods periodReader, assignments assignmentReader, validate *validator.Validate, logger *zap.Logger) *EditGrantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditGrantService{
		grants:      grants,
		requests:    requests,
		periods:     periods,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
	}
}

// MyGrants returns the caller's unexpired grants for one assignment/period.
func (s *EditGrantService) MyGrants(ctx context.Context, actor Actor, teacherAssignmentID, periodID string) ([]models.EditGrant, error) {
	if teacherAssignmentID == "" || periodID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher_assignment_id and period_id are required")
	}
	grants, err := s.grants.ListActive(ctx, actor.UserID, teacherAssignmentID, periodID, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grants")
	}
	return grants, nil
}

// CreateRequest opens a petition to edit a closed grading window.
func (s *EditGrantService) CreateRequest(ctx context.Context, actor Actor, req dto.CreateEditRequestRequest) (*models.EditRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit request payload")
	}

	assignment, err := s.assignments.FindDetailByID(ctx, req.TeacherAssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignment")
	}
	if assignment.TeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another teacher")
	}

	period, err := s.periods.FindByID(ctx, req.PeriodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading period")
	}
	if period.IsClosed {
		return nil, appErrors.Clone(appErrors.ErrPeriodClosed, "period is closed for further edits")
	}
	if period.WindowOpen(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "edit window is still open")
	}

	request := &models.EditRequest{
		TeacherID:           actor.UserID,
		TeacherAssignmentID: req.TeacherAssignmentID,
		PeriodID:            req.PeriodID,
		Reason:              req.Reason,
		Status:              models.EditRequestPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create edit request")
	}
	s.logger.Info("edit request created",
		zap.String("request_id", request.ID),
		zap.String("teacher_id", actor.UserID),
		zap.String("period_id", req.PeriodID))
	return request, nil
}

// ListRequests returns requests visible to the caller. Teachers see their
// own; administrators see everything matching the filter.
func (s *EditGrantService) ListRequests(ctx context.Context, actor Actor, filter models.EditRequestFilter) ([]models.EditRequest, error) {
	if actor.Role != models.RoleAdmin {
		filter.TeacherID = actor.UserID
	}
	rows, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list edit requests")
	}
	return rows, nil
}

// Approve turns a pending request into a live grant.
func (s *EditGrantService) Approve(ctx context.Context, actor Actor, requestID string, req dto.ApproveEditRequestRequest) (*models.EditGrant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}
	now := time.Now().UTC()
	if !req.ValidUntil.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "valid_until must be in the future")
	}
	if req.GrantType == models.GrantPartial && len(req.EnrollmentIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "partial grants require enrollment_ids")
	}

	request, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	grant := &models.EditGrant{
		TeacherID:           request.TeacherID,
		TeacherAssignmentID: request.TeacherAssignmentID,
		PeriodID:            request.PeriodID,
		GrantType:           req.GrantType,
		ValidUntil:          req.ValidUntil,
		EnrollmentIDs:       req.EnrollmentIDs,
	}
	if req.GrantType == models.GrantFull {
		grant.EnrollmentIDs = nil
	}
	if err := s.grants.Create(ctx, grant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grant")
	}
	if err := s.requests.UpdateStatus(ctx, requestID, models.EditRequestApproved, actor.UserID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}
	s.logger.Info("edit request approved",
		zap.String("request_id", requestID),
		zap.String("grant_id", grant.ID),
		zap.String("grant_type", string(req.GrantType)))
	return grant, nil
}

// Reject closes a pending request without creating a grant.
func (s *EditGrantService) Reject(ctx context.Context, actor Actor, requestID string) error {
	if _, err := s.pendingRequest(ctx, requestID); err != nil {
		return err
	}
	if err := s.requests.UpdateStatus(ctx, requestID, models.EditRequestRejected, actor.UserID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}
	return nil
}

func (s *EditGrantService) pendingRequest(ctx context.Context, requestID string) (*models.EditRequest, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "edit request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load edit request")
	}
	if request.Status != models.EditRequestPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "edit request already reviewed")
	}
	return request, nil
}
