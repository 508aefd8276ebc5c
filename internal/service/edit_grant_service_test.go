package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
)

type mockGrantStore struct {
	created []models.EditGrant
}

func (m *mockGrantStore) Create(ctx context.Context, grant *models.EditGrant) error {
	if grant.ID == "" {
		grant.ID = "grant-new"
	}
	m.created = append(m.created, *grant)
	return nil
}

func (m *mockGrantStore) ListActive(ctx context.Context, teacherID, taID, periodID string, now time.Time) ([]models.EditGrant, error) {
	return m.created, nil
}

type mockRequestStore struct {
	requests map[string]models.EditRequest
}

func (m *mockRequestStore) Create(ctx context.Context, req *models.EditRequest) error {
	if m.requests == nil {
		m.requests = make(map[string]models.EditRequest)
	}
	if req.ID == "" {
		req.ID = "req-new"
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *mockRequestStore) FindByID(ctx context.Context, id string) (*models.EditRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &req, nil
}

func (m *mockRequestStore) List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, error) {
	var out []models.EditRequest
	for _, r := range m.requests {
		if filter.TeacherID != "" && r.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRequestStore) UpdateStatus(ctx context.Context, id string, status models.EditRequestStatus, reviewerID string, reviewedAt time.Time) error {
	req := m.requests[id]
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &reviewedAt
	m.requests[id] = req
	return nil
}

func newGrantFixture(period models.GradingPeriod) (*EditGrantService, *mockGrantStore, *mockRequestStore) {
	grants := &mockGrantStore{}
	requests := &mockRequestStore{}
	periods := &mockPeriodReader{period: &period}
	assignments := &mockAssignmentReader{assignment: &models.TeacherAssignmentDetail{
		TeacherAssignment: models.TeacherAssignment{ID: "ta-1", TeacherID: "tch-1", ClassID: "cls-1", YearID: "yr-1"},
	}}
	return NewEditGrantService(grants, requests, periods, assignments, nil, nil), grants, requests
}

func TestCreateRequestOnClosedWindow(t *testing.T) {
	svc, _, requests := newGrantFixture(expiredPeriod())

	req, err := svc.CreateRequest(context.Background(), teacherActor, dto.CreateEditRequestRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Reason:              "late exam results arrived",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EditRequestPending, req.Status)
	require.Contains(t, requests.requests, req.ID)
	assert.Equal(t, models.EditRequestPending, requests.requests[req.ID].Status)
}

func TestCreateRequestRejectedWhileWindowOpen(t *testing.T) {
	svc, _, _ := newGrantFixture(openPeriod())

	_, err := svc.CreateRequest(context.Background(), teacherActor, dto.CreateEditRequestRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Reason:              "late exam results arrived",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateRequestRejectedOnClosedPeriod(t *testing.T) {
	period := expiredPeriod()
	period.IsClosed = true
	svc, _, _ := newGrantFixture(period)

	_, err := svc.CreateRequest(context.Background(), teacherActor, dto.CreateEditRequestRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Reason:              "late exam results arrived",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPeriodClosed.Code, appErr.Code)
}

func TestCreateRequestForbiddenForOtherTeacher(t *testing.T) {
	svc, _, _ := newGrantFixture(expiredPeriod())

	_, err := svc.CreateRequest(context.Background(), Actor{UserID: "tch-9", Role: models.RoleTeacher}, dto.CreateEditRequestRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Reason:              "late exam results arrived",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestApproveCreatesPartialGrant(t *testing.T) {
	svc, grants, requests := newGrantFixture(expiredPeriod())
	requests.requests = map[string]models.EditRequest{
		"req-1": {ID: "req-1", TeacherID: "tch-1", TeacherAssignmentID: "ta-1", PeriodID: "per-1", Status: models.EditRequestPending},
	}

	admin := Actor{UserID: "adm-1", Role: models.RoleAdmin}
	grant, err := svc.Approve(context.Background(), admin, "req-1", dto.ApproveEditRequestRequest{
		GrantType:     models.GrantPartial,
		ValidUntil:    time.Now().Add(48 * time.Hour),
		EnrollmentIDs: []string{"enr-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.GrantPartial, grant.GrantType)
	assert.Equal(t, []string{"enr-1"}, grant.EnrollmentIDs)
	assert.Equal(t, "tch-1", grant.TeacherID)
	require.Len(t, grants.created, 1)

	reviewed := requests.requests["req-1"]
	assert.Equal(t, models.EditRequestApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "adm-1", *reviewed.ReviewedBy)
}

func TestApprovePartialWithoutEnrollmentsFails(t *testing.T) {
	svc, _, requests := newGrantFixture(expiredPeriod())
	requests.requests = map[string]models.EditRequest{
		"req-1": {ID: "req-1", TeacherID: "tch-1", Status: models.EditRequestPending},
	}

	_, err := svc.Approve(context.Background(), Actor{UserID: "adm-1", Role: models.RoleAdmin}, "req-1", dto.ApproveEditRequestRequest{
		GrantType:  models.GrantPartial,
		ValidUntil: time.Now().Add(48 * time.Hour),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestApproveAlreadyReviewedConflicts(t *testing.T) {
	svc, _, requests := newGrantFixture(expiredPeriod())
	requests.requests = map[string]models.EditRequest{
		"req-1": {ID: "req-1", TeacherID: "tch-1", Status: models.EditRequestApproved},
	}

	_, err := svc.Approve(context.Background(), Actor{UserID: "adm-1", Role: models.RoleAdmin}, "req-1", dto.ApproveEditRequestRequest{
		GrantType:  models.GrantFull,
		ValidUntil: time.Now().Add(48 * time.Hour),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRejectMarksRequest(t *testing.T) {
	svc, grants, requests := newGrantFixture(expiredPeriod())
	requests.requests = map[string]models.EditRequest{
		"req-1": {ID: "req-1", TeacherID: "tch-1", Status: models.EditRequestPending},
	}

	err := svc.Reject(context.Background(), Actor{UserID: "adm-1", Role: models.RoleAdmin}, "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.EditRequestRejected, requests.requests["req-1"].Status)
	assert.Empty(t, grants.created)
}

func TestListRequestsScopesTeachersToTheirOwn(t *testing.T) {
	svc, _, requests := newGrantFixture(expiredPeriod())
	requests.requests = map[string]models.EditRequest{
		"req-1": {ID: "req-1", TeacherID: "tch-1", Status: models.EditRequestPending},
		"req-2": {ID: "req-2", TeacherID: "tch-9", Status: models.EditRequestPending},
	}

	mine, err := svc.ListRequests(context.Background(), teacherActor, models.EditRequestFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "req-1", mine[0].ID)

	all, err := svc.ListRequests(context.Background(), Actor{UserID: "adm-1", Role: models.RoleAdmin}, models.EditRequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
