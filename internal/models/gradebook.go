package models

import "time"

// GradingMode selects how achievement scores are captured.
type GradingMode string

const (
	// ModeAchievements scores each achievement directly.
	ModeAchievements GradingMode = "ACHIEVEMENTS"
	// ModeActivities scores activity columns; an achievement's score is the
	// average of its active columns.
	ModeActivities GradingMode = "ACTIVITIES"
)

// Scale bounds for all recorded scores.
const (
	ScaleMin = 1.0
	ScaleMax = 5.0
)

// Scale labels (performance bands) attached to computed final scores.
const (
	ScaleLabelLow      = "LOW"
	ScaleLabelBasic    = "BASIC"
	ScaleLabelHigh     = "HIGH"
	ScaleLabelSuperior = "SUPERIOR"
)

// ScaleLabelFor maps a final score onto its performance band.
func ScaleLabelFor(score float64) string {
	switch {
	case score < 3.0:
		return ScaleLabelLow
	case score < 4.0:
		return ScaleLabelBasic
	case score < 4.6:
		return ScaleLabelHigh
	default:
		return ScaleLabelSuperior
	}
}

// Gradesheet binds a teacher assignment to a grading period and fixes the
// grading mode for that combination.
type Gradesheet struct {
	ID                  string      `db:"id" json:"id"`
	TeacherAssignmentID string      `db:"teacher_assignment_id" json:"teacher_assignment_id"`
	PeriodID            string      `db:"period_id" json:"period_id"`
	Mode                GradingMode `db:"mode" json:"mode"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// Dimension is a weighted category of achievements. Percentage is its weight
// of the final score.
type Dimension struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Percentage float64 `db:"percentage" json:"percentage"`
	Position   int     `db:"position" json:"position"`
}

// Achievement is a gradable objective within a dimension. Percentage is its
// relative weight inside the dimension; weights need not sum to 100.
type Achievement struct {
	ID           string    `db:"id" json:"id"`
	GradesheetID string    `db:"gradesheet_id" json:"gradesheet_id"`
	DimensionID  string    `db:"dimension_id" json:"dimension_id"`
	Title        string    `db:"title" json:"title"`
	Percentage   float64   `db:"percentage" json:"percentage"`
	Position     int       `db:"position" json:"position"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ActivityColumn subdivides an achievement when the gradesheet uses
// ACTIVITIES mode. Inactive columns are excluded from averages.
type ActivityColumn struct {
	ID            string    `db:"id" json:"id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	Label         string    `db:"label" json:"label"`
	Position      int       `db:"position" json:"position"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ScoreCell is a persisted achievement score. A nil Score means "no score
// recorded", which is a valid state distinct from any error.
type ScoreCell struct {
	ID            string    `db:"id" json:"id"`
	EnrollmentID  string    `db:"enrollment_id" json:"enrollment_id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	Score         *float64  `db:"score" json:"score"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ActivityScoreCell is a persisted activity-column score.
type ActivityScoreCell struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	ColumnID     string    `db:"column_id" json:"column_id"`
	Score        *float64  `db:"score" json:"score"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ComputedScore is the server-authoritative final score for an enrollment on
// a gradesheet. Rows exist only once every required cell is filled.
type ComputedScore struct {
	ID           string    `db:"id" json:"id"`
	GradesheetID string    `db:"gradesheet_id" json:"gradesheet_id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	FinalScore   float64   `db:"final_score" json:"final_score"`
	ScaleLabel   string    `db:"scale_label" json:"scale_label"`
	CalculatedAt time.Time `db:"calculated_at" json:"calculated_at"`
}

// GradebookSnapshot is the full payload a gradebook view loads in one call.
type GradebookSnapshot struct {
	Period        GradingPeriod           `json:"period"`
	Assignment    TeacherAssignmentDetail `json:"teacher_assignment"`
	Gradesheet    Gradesheet              `json:"gradesheet"`
	Dimensions    []Dimension             `json:"dimensions"`
	Achievements  []Achievement           `json:"achievements"`
	Columns       []ActivityColumn        `json:"activity_columns,omitempty"`
	Students      []EnrollmentDetail      `json:"students"`
	Cells         []ScoreCell             `json:"cells"`
	ActivityCells []ActivityScoreCell     `json:"activity_cells,omitempty"`
	Computed      []ComputedScore         `json:"computed"`
	GeneratedAt   time.Time               `json:"generated_at"`
}
