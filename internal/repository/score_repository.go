package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// ScoreRepository persists achievement and activity scores.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// ListByGradesheet returns every achievement score on a gradesheet.
func (r *ScoreRepository) ListByGradesheet(ctx context.Context, gradesheetID string) ([]models.ScoreCell, error) {
	const query = `SELECT sc.id, sc.enrollment_id, sc.achievement_id, sc.score, sc.created_at, sc.updated_at
        FROM achievement_scores sc
        JOIN achievements a ON a.id = sc.achievement_id
        WHERE a.gradesheet_id = $1`
	var cells []models.ScoreCell
	if err := r.db.SelectContext(ctx, &cells, query, gradesheetID); err != nil {
		return nil, fmt.Errorf("list achievement scores: %w", err)
	}
	return cells, nil
}

// ListByEnrollment returns one enrollment's achievement scores on a
// gradesheet, for completeness checks before recomputation.
func (r *ScoreRepository) ListByEnrollment(ctx context.Context, gradesheetID, enrollmentID string) ([]models.ScoreCell, error) {
	const query = `SELECT sc.id, sc.enrollment_id, sc.achievement_id, sc.score, sc.created_at, sc.updated_at
        FROM achievement_scores sc
        JOIN achievements a ON a.id = sc.achievement_id
        WHERE a.gradesheet_id = $1 AND sc.enrollment_id = $2`
	var cells []models.ScoreCell
	if err := r.db.SelectContext(ctx, &cells, query, gradesheetID, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment scores: %w", err)
	}
	return cells, nil
}

// BulkUpsert inserts or updates achievement scores in one transaction. A nil
// score is stored as NULL, clearing the cell.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, cells []models.ScoreCell) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range cells {
		if cells[i].ID == "" {
			cells[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if cells[i].CreatedAt.IsZero() {
			cells[i].CreatedAt = now
		}
		cells[i].UpdatedAt = now
		const query = `INSERT INTO achievement_scores (id, enrollment_id, achievement_id, score, created_at, updated_at)
                VALUES (:id, :enrollment_id, :achievement_id, :score, :created_at, :updated_at)
                ON CONFLICT (enrollment_id, achievement_id)
                DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, cells[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert achievement score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit achievement scores: %w", err)
	}
	return nil
}

// ListActivityByGradesheet returns every activity score on a gradesheet.
func (r *ScoreRepository) ListActivityByGradesheet(ctx context.Context, gradesheetID string) ([]models.ActivityScoreCell, error) {
	const query = `SELECT asc_.id, asc_.enrollment_id, asc_.column_id, asc_.score, asc_.created_at, asc_.updated_at
        FROM activity_scores asc_
        JOIN activity_columns ac ON ac.id = asc_.column_id
        JOIN achievements a ON a.id = ac.achievement_id
        WHERE a.gradesheet_id = $1`
	var cells []models.ActivityScoreCell
	if err := r.db.SelectContext(ctx, &cells, query, gradesheetID); err != nil {
		return nil, fmt.Errorf("list activity scores: %w", err)
	}
	return cells, nil
}

// ListActivityByEnrollment returns one enrollment's activity scores on a
// gradesheet.
func (r *ScoreRepository) ListActivityByEnrollment(ctx context.Context, gradesheetID, enrollmentID string) ([]models.ActivityScoreCell, error) {
	const query = `SELECT asc_.id, asc_.enrollment_id, asc_.column_id, asc_.score, asc_.created_at, asc_.updated_at
        FROM activity_scores asc_
        JOIN activity_columns ac ON ac.id = asc_.column_id
        JOIN achievements a ON a.id = ac.achievement_id
        WHERE a.gradesheet_id = $1 AND asc_.enrollment_id = $2`
	var cells []models.ActivityScoreCell
	if err := r.db.SelectContext(ctx, &cells, query, gradesheetID, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment activity scores: %w", err)
	}
	return cells, nil
}

// BulkUpsertActivity inserts or updates activity scores in one transaction.
func (r *ScoreRepository) BulkUpsertActivity(ctx context.Context, cells []models.ActivityScoreCell) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range cells {
		if cells[i].ID == "" {
			cells[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if cells[i].CreatedAt.IsZero() {
			cells[i].CreatedAt = now
		}
		cells[i].UpdatedAt = now
		const query = `INSERT INTO activity_scores (id, enrollment_id, column_id, score, created_at, updated_at)
                VALUES (:id, :enrollment_id, :column_id, :score, :created_at, :updated_at)
                ON CONFLICT (enrollment_id, column_id)
                DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, cells[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert activity score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activity scores: %w", err)
	}
	return nil
}
