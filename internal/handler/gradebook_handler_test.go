package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/middleware"
	"github.com/saberes-app/gradebook-api/internal/models"
	"github.com/saberes-app/gradebook-api/internal/service"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
	"github.com/saberes-app/gradebook-api/pkg/response"
)

type gradebookServiceMock struct {
	snapshotResp *models.GradebookSnapshot
	snapshotErr  error
	bulkResp     *dto.BulkScoresResult
	bulkErr      error
	recalcErr    error

	lastActor    service.Actor
	lastBulkReq  dto.BulkScoresRequest
	recalcCalled bool
}

func (m *gradebookServiceMock) Snapshot(ctx context.Context, actor service.Actor, taID, periodID string) (*models.GradebookSnapshot, error) {
	m.lastActor = actor
	return m.snapshotResp, m.snapshotErr
}

func (m *gradebookServiceMock) BulkUpsertScores(ctx context.Context, actor service.Actor, req dto.BulkScoresRequest) (*dto.BulkScoresResult, error) {
	m.lastActor = actor
	m.lastBulkReq = req
	return m.bulkResp, m.bulkErr
}

func (m *gradebookServiceMock) BulkUpsertActivityScores(ctx context.Context, actor service.Actor, req dto.BulkActivityScoresRequest) (*dto.BulkScoresResult, error) {
	return m.bulkResp, m.bulkErr
}

func (m *gradebookServiceMock) Recalculate(ctx context.Context, actor service.Actor, req dto.RecalculateRequest) error {
	m.recalcCalled = true
	return m.recalcErr
}

func teacherContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tch-1", Role: models.RoleTeacher})
	return c, w
}

func TestGradebookHandlerSnapshot(t *testing.T) {
	mockSvc := &gradebookServiceMock{snapshotResp: &models.GradebookSnapshot{
		Gradesheet: models.Gradesheet{ID: "gs-1"},
	}}
	h := NewGradebookHandler(mockSvc, nil)

	c, w := teacherContext(t, http.MethodGet, "/gradebook?teacher_assignment_id=ta-1&period_id=per-1", nil)
	h.Snapshot(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tch-1", mockSvc.lastActor.UserID)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.NotNil(t, env.Data)
}

func TestGradebookHandlerSnapshotRequiresParams(t *testing.T) {
	h := NewGradebookHandler(&gradebookServiceMock{}, nil)

	c, w := teacherContext(t, http.MethodGet, "/gradebook?teacher_assignment_id=ta-1", nil)
	h.Snapshot(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradebookHandlerSnapshotUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewGradebookHandler(&gradebookServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/gradebook?teacher_assignment_id=ta-1&period_id=per-1", nil)
	c.Request = req
	h.Snapshot(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGradebookHandlerBulkScores(t *testing.T) {
	score := 4.5
	mockSvc := &gradebookServiceMock{bulkResp: &dto.BulkScoresResult{
		Updated: 1,
		Blocked: []dto.BlockedWrite{{EnrollmentID: "enr-2", AchievementID: "ach-1", Reason: "edit window closed"}},
	}}
	h := NewGradebookHandler(mockSvc, nil)

	c, w := teacherContext(t, http.MethodPost, "/gradebook/scores/bulk", dto.BulkScoresRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Scores: []dto.ScoreWrite{
			{EnrollmentID: "enr-1", AchievementID: "ach-1", Score: &score},
		},
	})
	h.BulkScores(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ta-1", mockSvc.lastBulkReq.TeacherAssignmentID)

	var env struct {
		Data dto.BulkScoresResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Data.Updated)
	require.Len(t, env.Data.Blocked, 1)
	assert.Equal(t, "edit window closed", env.Data.Blocked[0].Reason)
}

func TestGradebookHandlerBulkScoresMalformedBody(t *testing.T) {
	h := NewGradebookHandler(&gradebookServiceMock{}, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/gradebook/scores/bulk", bytes.NewReader([]byte("{not json")))
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "tch-1", Role: models.RoleTeacher})
	h.BulkScores(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradebookHandlerBulkScoresServiceError(t *testing.T) {
	score := 9.0
	mockSvc := &gradebookServiceMock{bulkErr: appErrors.Clone(appErrors.ErrOutOfRange, "score 9.00 outside [1.00, 5.00]")}
	h := NewGradebookHandler(mockSvc, nil)

	c, w := teacherContext(t, http.MethodPost, "/gradebook/scores/bulk", dto.BulkScoresRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
		Scores: []dto.ScoreWrite{
			{EnrollmentID: "enr-1", AchievementID: "ach-1", Score: &score},
		},
	})
	h.BulkScores(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrOutOfRange.Code, env.Error.Code)
}

func TestGradebookHandlerRecalculate(t *testing.T) {
	mockSvc := &gradebookServiceMock{}
	h := NewGradebookHandler(mockSvc, nil)

	c, w := teacherContext(t, http.MethodPost, "/gradebook/recalculate", dto.RecalculateRequest{
		TeacherAssignmentID: "ta-1",
		PeriodID:            "per-1",
	})
	h.Recalculate(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, mockSvc.recalcCalled)
}
