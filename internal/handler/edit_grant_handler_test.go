package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/models"
	"github.com/saberes-app/gradebook-api/internal/service"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
	"github.com/saberes-app/gradebook-api/pkg/response"
)

type editGrantServiceMock struct {
	grants     []models.EditGrant
	grantsErr  error
	request    *models.EditRequest
	requestErr error
	requests   []models.EditRequest
	grant      *models.EditGrant
	approveErr error
	rejectErr  error

	lastFilter    models.EditRequestFilter
	lastRequestID string
	lastApprove   dto.ApproveEditRequestRequest
}

func (m *editGrantServiceMock) MyGrants(ctx context.Context, actor service.Actor, teacherAssignmentID, periodID string) ([]models.EditGrant, error) {
	return m.grants, m.grantsErr
}

func (m *editGrantServiceMock) CreateRequest(ctx context.Context, actor service.Actor, req dto.CreateEditRequestRequest) (*models.EditRequest, error) {
	return m.request, m.requestErr
}

func (m *editGrantServiceMock) ListRequests(ctx context.Context, actor service.Actor, filter models.EditRequestFilter) ([]models.EditRequest, error) {
	m.lastFilter = filter
	return m.requests, nil
}

func (m *editGrantServiceMock) Approve(ctx context.Context, actor service.Actor, requestID string, req dto.ApproveEditRequestRequest) (*models.EditGrant, error) {
	m.lastRequestID = requestID
	m.lastApprove = req
	return m.grant, m.approveErr
}

func (m *editGrantServiceMock) Reject(ctx context.Context, actor service.Actor, requestID string) error {
	m.lastRequestID = requestID
	return m.rejectErr
}

func TestEditGrantHandlerMyGrants(t *testing.T) {
	mockSvc := &editGrantServiceMock{grants: []models.EditGrant{
		{ID: "grant-1", GrantType: models.GrantPartial, EnrollmentIDs: []string{"enr-1"}},
	}}
	h := NewEditGrantHandler(mockSvc)

	c, w := teacherContext(t, http.MethodGet, "/edit-grants/mine?teacher_assignment_id=ta-1&period_id=per-1", nil)
	h.MyGrants(c)

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []models.EditGrant `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, models.GrantPartial, env.Data[0].GrantType)
}

func TestEditGrantHandlerCreateRequest(t *testing.T) {
	mockSvc := &editGrantServiceMock{request: &models.EditRequest{
		ID:     "req-1",
		Status: models.EditRequestPending,
	}}
	h := NewEditGrantHandler(mockSvc)

	c, w := teacherContext(t, http.MethodPost, "/edit-requests", dto.CreateEditRequestRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Reason:              "late exam submissions need corrections",
	})
	h.CreateRequest(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEditGrantHandlerCreateRequestWindowOpen(t *testing.T) {
	mockSvc := &editGrantServiceMock{requestErr: appErrors.Clone(appErrors.ErrValidation, "edit window is still open")}
	h := NewEditGrantHandler(mockSvc)

	c, w := teacherContext(t, http.MethodPost, "/edit-requests", dto.CreateEditRequestRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Reason:              "late exam submissions need corrections",
	})
	h.CreateRequest(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}

func TestEditGrantHandlerListRequestsFilter(t *testing.T) {
	mockSvc := &editGrantServiceMock{}
	h := NewEditGrantHandler(mockSvc)

	c, w := teacherContext(t, http.MethodGet, "/edit-requests?status=PENDING&period_id=per-1", nil)
	h.ListRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.EditRequestPending, mockSvc.lastFilter.Status)
	assert.Equal(t, "per-1", mockSvc.lastFilter.PeriodID)
}

func TestEditGrantHandlerApprove(t *testing.T) {
	validUntil := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	mockSvc := &editGrantServiceMock{grant: &models.EditGrant{
		ID:         "grant-1",
		GrantType:  models.GrantFull,
		ValidUntil: validUntil,
	}}
	h := NewEditGrantHandler(mockSvc)

	c, w := teacherContext(t, http.MethodPost, "/edit-requests/req-1/approve", dto.ApproveEditRequestRequest{
		GrantType:  models.GrantFull,
		ValidUntil: validUntil,
	})
	c.Params = append(c.Params, gin.Param{Key: "id", Value: "req-1"})
	h.Approve(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", mockSvc.lastRequestID)
	assert.Equal(t, models.GrantFull, mockSvc.lastApprove.GrantType)
}

func TestEditGrantHandlerReject(t *testing.T) {
	mockSvc := &editGrantServiceMock{}
	h := NewEditGrantHandler(mockSvc)

	c, w := teacherContext(t, http.MethodPost, "/edit-requests/req-1/reject", nil)
	c.Params = append(c.Params, gin.Param{Key: "id", Value: "req-1"})
	h.Reject(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-1", mockSvc.lastRequestID)
}
