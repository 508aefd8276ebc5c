package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// EnrollmentRepository reads class rosters.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListActiveByClass returns the active roster of a class for an academic
// year, ordered by student name.
func (r *EnrollmentRepository) ListActiveByClass(ctx context.Context, classID, yearID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.class_id, e.year_id, e.joined_at, e.left_at, e.status,
        s.full_name AS student_name, s.code AS student_code
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.class_id = $1 AND e.year_id = $2 AND e.status = $3
        ORDER BY s.full_name ASC`
	var rows []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &rows, query, classID, yearID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return rows, nil
}

// ActiveIDsByClass returns just the active enrollment identifiers of a class.
func (r *EnrollmentRepository) ActiveIDsByClass(ctx context.Context, classID, yearID string) ([]string, error) {
	const query = `SELECT id FROM enrollments WHERE class_id = $1 AND year_id = $2 AND status = $3 ORDER BY id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, classID, yearID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list enrollment ids: %w", err)
	}
	return ids, nil
}
