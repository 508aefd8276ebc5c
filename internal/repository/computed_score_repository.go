package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// ComputedScoreRepository persists the authoritative final scores.
type ComputedScoreRepository struct {
	db *sqlx.DB
}

// NewComputedScoreRepository creates a new computed score repository.
func NewComputedScoreRepository(db *sqlx.DB) *ComputedScoreRepository {
	return &ComputedScoreRepository{db: db}
}

// ListByGradesheet returns the computed scores of every enrollment on a
// gradesheet.
func (r *ComputedScoreRepository) ListByGradesheet(ctx context.Context, gradesheetID string) ([]models.ComputedScore, error) {
	const query = `SELECT id, gradesheet_id, enrollment_id, final_score, scale_label, calculated_at FROM computed_scores WHERE gradesheet_id = $1`
	var rows []models.ComputedScore
	if err := r.db.SelectContext(ctx, &rows, query, gradesheetID); err != nil {
		return nil, fmt.Errorf("list computed scores: %w", err)
	}
	return rows, nil
}

// Upsert stores the final score for one enrollment.
func (r *ComputedScoreRepository) Upsert(ctx context.Context, row *models.ComputedScore) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	const query = `INSERT INTO computed_scores (id, gradesheet_id, enrollment_id, final_score, scale_label, calculated_at)
        VALUES (:id, :gradesheet_id, :enrollment_id, :final_score, :scale_label, :calculated_at)
        ON CONFLICT (gradesheet_id, enrollment_id)
        DO UPDATE SET final_score = EXCLUDED.final_score, scale_label = EXCLUDED.scale_label, calculated_at = EXCLUDED.calculated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert computed score: %w", err)
	}
	return nil
}

// Delete removes the computed score of one enrollment. Called when a cell is
// cleared and the gradesheet is no longer complete for that enrollment.
func (r *ComputedScoreRepository) Delete(ctx context.Context, gradesheetID, enrollmentID string) error {
	const query = `DELETE FROM computed_scores WHERE gradesheet_id = $1 AND enrollment_id = $2`
	if _, err := r.db.ExecContext(ctx, query, gradesheetID, enrollmentID); err != nil {
		return fmt.Errorf("delete computed score: %w", err)
	}
	return nil
}
