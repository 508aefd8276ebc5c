package gradebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
)

func TestClientLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/gradebook", r.URL.Path)
		assert.Equal(t, "ta-1", r.URL.Query().Get("teacher_assignment_id"))
		assert.Equal(t, "per-1", r.URL.Query().Get("period_id"))
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": models.GradebookSnapshot{
				Gradesheet:  models.Gradesheet{ID: "gs-1", Mode: models.ModeAchievements},
				Students:    []models.EnrollmentDetail{{StudentName: "Ana Gomez"}},
				GeneratedAt: time.Now(),
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123", "ta-1", "per-1", models.ModeAchievements)
	snapshot, err := client.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gs-1", snapshot.Gradesheet.ID)
	require.Len(t, snapshot.Students, 1)
	assert.Equal(t, "Ana Gomez", snapshot.Students[0].StudentName)
}

func TestClientSaveAchievements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/gradebook/scores/bulk", r.URL.Path)

		var req dto.BulkScoresRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ta-1", req.TeacherAssignmentID)
		require.Len(t, req.Scores, 2)
		assert.Equal(t, "ach-1", req.Scores[0].AchievementID)
		assert.Nil(t, req.Scores[1].Score)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": dto.BulkScoresResult{
				Updated: 1,
				Blocked: []dto.BlockedWrite{{
					EnrollmentID:  "enr-2",
					AchievementID: "ach-1",
					Reason:        "edit window closed",
				}},
				Computed: []models.ComputedScore{
					{EnrollmentID: "enr-1", FinalScore: 4.5, ScaleLabel: "HIGH"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123", "ta-1", "per-1", models.ModeAchievements)
	score := 4.5
	result, err := client.Save(context.Background(), []SaveItem{
		{Key: Key{EnrollmentID: "enr-1", TargetID: "ach-1"}, Value: &score},
		{Key: Key{EnrollmentID: "enr-2", TargetID: "ach-1"}, Value: nil},
	})
	require.NoError(t, err)
	require.Len(t, result.Blocked, 1)
	assert.Equal(t, Key{EnrollmentID: "enr-2", TargetID: "ach-1"}, result.Blocked[0].Key)
	assert.Equal(t, "edit window closed", result.Blocked[0].Reason)
	require.Len(t, result.Computed, 1)
	assert.InDelta(t, 4.5, result.Computed[0].FinalScore, 1e-9)
}

func TestClientSaveActivitiesRoutesToColumnEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/gradebook/activity-scores/bulk", r.URL.Path)

		var req dto.BulkActivityScoresRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Scores, 1)
		assert.Equal(t, "col-1", req.Scores[0].ColumnID)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": dto.BulkScoresResult{Updated: 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123", "ta-1", "per-1", models.ModeActivities)
	score := 3.0
	result, err := client.Save(context.Background(), []SaveItem{
		{Key: Key{EnrollmentID: "enr-1", TargetID: "col-1"}, Value: &score},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Blocked)
}

func TestClientSurfacesEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": appErrors.ErrPeriodClosed,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123", "ta-1", "per-1", models.ModeAchievements)
	score := 4.0
	_, err := client.Save(context.Background(), []SaveItem{
		{Key: Key{EnrollmentID: "enr-1", TargetID: "ach-1"}, Value: &score},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPeriodClosed.Code, appErr.Code)
}

func TestClientGrants(t *testing.T) {
	validUntil := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/edit-grants/mine", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []models.EditGrant{{
				ID:         "grant-1",
				GrantType:  models.GrantPartial,
				ValidUntil:    validUntil,
				EnrollmentIDs: []string{"enr-1"},
			}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-123", "ta-1", "per-1", models.ModeAchievements)
	grants, err := client.Grants(context.Background())
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, models.GrantPartial, grants[0].GrantType)
	assert.True(t, grants[0].Covers(time.Now(), "enr-1"))
}
