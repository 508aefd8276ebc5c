package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// GradesheetRepository manages gradesheets and their weighted structure.
type GradesheetRepository struct {
	db *sqlx.DB
}

// NewGradesheetRepository creates a new gradesheet repository.
func NewGradesheetRepository(db *sqlx.DB) *GradesheetRepository {
	return &GradesheetRepository{db: db}
}

// FindByAssignmentAndPeriod returns the gradesheet of one assignment/period
// pair, or sql.ErrNoRows when none exists.
func (r *GradesheetRepository) FindByAssignmentAndPeriod(ctx context.Context, teacherAssignmentID, periodID string) (*models.Gradesheet, error) {
	const query = `SELECT id, teacher_assignment_id, period_id, mode, created_at, updated_at FROM gradesheets WHERE teacher_assignment_id = $1 AND period_id = $2 LIMIT 1`
	var sheet models.Gradesheet
	if err := r.db.GetContext(ctx, &sheet, query, teacherAssignmentID, periodID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find gradesheet: %w", err)
	}
	return &sheet, nil
}

// Create inserts a new gradesheet.
func (r *GradesheetRepository) Create(ctx context.Context, sheet *models.Gradesheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sheet.CreatedAt = now
	sheet.UpdatedAt = now
	const query = `INSERT INTO gradesheets (id, teacher_assignment_id, period_id, mode, created_at, updated_at)
        VALUES (:id, :teacher_assignment_id, :period_id, :mode, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sheet); err != nil {
		return fmt.Errorf("create gradesheet: %w", err)
	}
	return nil
}

// Dimensions returns the weighted dimensions, ordered by position.
func (r *GradesheetRepository) Dimensions(ctx context.Context) ([]models.Dimension, error) {
	const query = `SELECT id, name, percentage, position FROM dimensions ORDER BY position ASC`
	var dims []models.Dimension
	if err := r.db.SelectContext(ctx, &dims, query); err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	return dims, nil
}

// Achievements returns a gradesheet's achievements, ordered by position.
func (r *GradesheetRepository) Achievements(ctx context.Context, gradesheetID string) ([]models.Achievement, error) {
	const query = `SELECT id, gradesheet_id, dimension_id, title, percentage, position, created_at FROM achievements WHERE gradesheet_id = $1 ORDER BY position ASC`
	var rows []models.Achievement
	if err := r.db.SelectContext(ctx, &rows, query, gradesheetID); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return rows, nil
}

// Columns returns the activity columns of a gradesheet's achievements,
// inactive ones included so the view can render them greyed out.
func (r *GradesheetRepository) Columns(ctx context.Context, gradesheetID string) ([]models.ActivityColumn, error) {
	const query = `SELECT ac.id, ac.achievement_id, ac.label, ac.position, ac.active, ac.created_at
        FROM activity_columns ac
        JOIN achievements a ON a.id = ac.achievement_id
        WHERE a.gradesheet_id = $1
        ORDER BY ac.position ASC`
	var rows []models.ActivityColumn
	if err := r.db.SelectContext(ctx, &rows, query, gradesheetID); err != nil {
		return nil, fmt.Errorf("list activity columns: %w", err)
	}
	return rows, nil
}
