package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// TeacherAssignmentRepository reads teacher/class/subject assignments.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository creates a new teacher assignment repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// FindDetailByID returns one assignment with class and subject names joined.
func (r *TeacherAssignmentRepository) FindDetailByID(ctx context.Context, id string) (*models.TeacherAssignmentDetail, error) {
	const query = `SELECT ta.id, ta.teacher_id, ta.class_id, ta.subject_id, ta.year_id, ta.created_at,
        c.name AS class_name, s.name AS subject_name, u.full_name AS teacher_name
        FROM teacher_assignments ta
        JOIN classes c ON c.id = ta.class_id
        JOIN subjects s ON s.id = ta.subject_id
        LEFT JOIN users u ON u.id = ta.teacher_id
        WHERE ta.id = $1 LIMIT 1`
	var detail models.TeacherAssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher assignment: %w", err)
	}
	return &detail, nil
}

// ListByTeacher returns all assignments of one teacher for an academic year.
func (r *TeacherAssignmentRepository) ListByTeacher(ctx context.Context, teacherID, yearID string) ([]models.TeacherAssignmentDetail, error) {
	const query = `SELECT ta.id, ta.teacher_id, ta.class_id, ta.subject_id, ta.year_id, ta.created_at,
        c.name AS class_name, s.name AS subject_name
        FROM teacher_assignments ta
        JOIN classes c ON c.id = ta.class_id
        JOIN subjects s ON s.id = ta.subject_id
        WHERE ta.teacher_id = $1 AND ta.year_id = $2
        ORDER BY c.name, s.name`
	var rows []models.TeacherAssignmentDetail
	if err := r.db.SelectContext(ctx, &rows, query, teacherID, yearID); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return rows, nil
}
