package dto

import (
	"time"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// ScoreWrite is a single achievement-score upsert. A nil Score clears the
// stored value.
type ScoreWrite struct {
	EnrollmentID  string   `json:"enrollment_id" validate:"required"`
	AchievementID string   `json:"achievement_id" validate:"required"`
	Score         *float64 `json:"score"`
}

// BulkScoresRequest carries a batch of achievement-score writes.
type BulkScoresRequest struct {
	TeacherAssignmentID string       `json:"teacher_assignment_id" validate:"required"`
	PeriodID            string       `json:"period_id" validate:"required"`
	Scores              []ScoreWrite `json:"scores" validate:"required,min=1,dive"`
}

// ActivityScoreWrite is a single activity-column upsert.
type ActivityScoreWrite struct {
	EnrollmentID string   `json:"enrollment_id" validate:"required"`
	ColumnID     string   `json:"column_id" validate:"required"`
	Score        *float64 `json:"score"`
}

// BulkActivityScoresRequest carries a batch of activity-column writes.
type BulkActivityScoresRequest struct {
	TeacherAssignmentID string               `json:"teacher_assignment_id" validate:"required"`
	PeriodID            string               `json:"period_id" validate:"required"`
	Scores              []ActivityScoreWrite `json:"scores" validate:"required,min=1,dive"`
}

// BlockedWrite reports a write the server refused because the grading window
// is closed and no grant covers the enrollment. Exactly one of AchievementID
// and ColumnID is set, matching the request kind.
type BlockedWrite struct {
	EnrollmentID  string `json:"enrollment_id"`
	AchievementID string `json:"achievement_id,omitempty"`
	ColumnID      string `json:"column_id,omitempty"`
	Reason        string `json:"reason"`
}

// BulkScoresResult summarises a bulk upsert: how many writes were persisted,
// which were blocked, and the recomputed aggregates for accepted enrollments.
type BulkScoresResult struct {
	Updated  int                    `json:"updated"`
	Blocked  []BlockedWrite         `json:"blocked,omitempty"`
	Computed []models.ComputedScore `json:"computed"`
}

// CreateEditRequestRequest opens a grant petition for a closed window.
type CreateEditRequestRequest struct {
	TeacherAssignmentID string `json:"teacher_assignment_id" validate:"required"`
	PeriodID            string `json:"period_id" validate:"required"`
	Reason              string `json:"reason" validate:"required,min=10"`
}

// ApproveEditRequestRequest materialises a grant from a pending request.
// EnrollmentIDs is required for PARTIAL grants and ignored for FULL ones.
type ApproveEditRequestRequest struct {
	GrantType     models.GrantType `json:"grant_type" validate:"required,oneof=FULL PARTIAL"`
	ValidUntil    time.Time        `json:"valid_until" validate:"required"`
	EnrollmentIDs []string         `json:"enrollment_ids,omitempty"`
}

// ExportResult returns the signed download handle for a rendered gradesheet.
type ExportResult struct {
	ExportID    string    `json:"export_id"`
	Format      string    `json:"format"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RecalculateRequest scopes an asynchronous period recalculation.
type RecalculateRequest struct {
	TeacherAssignmentID string `json:"teacher_assignment_id" validate:"required"`
	PeriodID            string `json:"period_id" validate:"required"`
}
