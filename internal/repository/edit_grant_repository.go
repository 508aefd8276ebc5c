package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// EditGrantRepository persists edit grants and their enrollment scopes.
type EditGrantRepository struct {
	db *sqlx.DB
}

// NewEditGrantRepository creates a new edit grant repository.
func NewEditGrantRepository(db *sqlx.DB) *EditGrantRepository {
	return &EditGrantRepository{db: db}
}

// Create stores a grant and, for PARTIAL grants, its enrollment scope rows in
// one transaction.
func (r *EditGrantRepository) Create(ctx context.Context, grant *models.EditGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const insertGrant = `INSERT INTO edit_grants (id, teacher_id, teacher_assignment_id, period_id, grant_type, valid_until, created_at)
        VALUES (:id, :teacher_id, :teacher_assignment_id, :period_id, :grant_type, :valid_until, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertGrant, grant); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert edit grant: %w", err)
	}
	if grant.GrantType == models.GrantPartial {
		const insertItem = `INSERT INTO edit_grant_enrollments (grant_id, enrollment_id) VALUES ($1, $2)`
		for _, enrollmentID := range grant.EnrollmentIDs {
			if _, err := tx.ExecContext(ctx, insertItem, grant.ID, enrollmentID); err != nil {
				tx.Rollback() //nolint:errcheck
				return fmt.Errorf("insert grant enrollment: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit edit grant: %w", err)
	}
	return nil
}

// ListActive returns a teacher's unexpired grants for one assignment/period
// pair, with PARTIAL scopes attached.
func (r *EditGrantRepository) ListActive(ctx context.Context, teacherID, teacherAssignmentID, periodID string, now time.Time) ([]models.EditGrant, error) {
	const query = `SELECT id, teacher_id, teacher_assignment_id, period_id, grant_type, valid_until, created_at
        FROM edit_grants
        WHERE teacher_id = $1 AND teacher_assignment_id = $2 AND period_id = $3 AND valid_until > $4
        ORDER BY created_at DESC`
	var grants []models.EditGrant
	if err := r.db.SelectContext(ctx, &grants, query, teacherID, teacherAssignmentID, periodID, now); err != nil {
		return nil, fmt.Errorf("list active grants: %w", err)
	}
	const itemsQuery = `SELECT enrollment_id FROM edit_grant_enrollments WHERE grant_id = $1 ORDER BY enrollment_id`
	for i := range grants {
		if grants[i].GrantType != models.GrantPartial {
			continue
		}
		if err := r.db.SelectContext(ctx, &grants[i].EnrollmentIDs, itemsQuery, grants[i].ID); err != nil {
			return nil, fmt.Errorf("list grant enrollments: %w", err)
		}
	}
	return grants, nil
}
