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

// EditRequestRepository persists edit-window petitions and their review
// lifecycle.
type EditRequestRepository struct {
	db *sqlx.DB
}

// NewEditRequestRepository creates a new edit request repository.
func NewEditRequestRepository(db *sqlx.DB) *EditRequestRepository {
	return &EditRequestRepository{db: db}
}

// Create stores a new pending request.
func (r *EditRequestRepository) Create(ctx context.Context, req *models.EditRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = models.EditRequestPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO edit_requests (id, teacher_id, teacher_assignment_id, period_id, reason, status, created_at)
        VALUES (:id, :teacher_id, :teacher_assignment_id, :period_id, :reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create edit request: %w", err)
	}
	return nil
}

// FindByID returns one request by identifier.
func (r *EditRequestRepository) FindByID(ctx context.Context, id string) (*models.EditRequest, error) {
	const query = `SELECT id, teacher_id, teacher_assignment_id, period_id, reason, status, reviewed_by, reviewed_at, created_at FROM edit_requests WHERE id = $1 LIMIT 1`
	var req models.EditRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find edit request: %w", err)
	}
	return &req, nil
}

// List returns requests matching the filter, newest first.
func (r *EditRequestRepository) List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, error) {
	query := `SELECT id, teacher_id, teacher_assignment_id, period_id, reason, status, reviewed_by, reviewed_at, created_at FROM edit_requests WHERE 1=1`
	var args []interface{}
	if filter.TeacherID != "" {
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args)+1)
		args = append(args, filter.TeacherID)
	}
	if filter.PeriodID != "" {
		query += fmt.Sprintf(" AND period_id = $%d", len(args)+1)
		args = append(args, filter.PeriodID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at DESC"
	var rows []models.EditRequest
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list edit requests: %w", err)
	}
	return rows, nil
}

// UpdateStatus records the review decision on a pending request.
func (r *EditRequestRepository) UpdateStatus(ctx context.Context, id string, status models.EditRequestStatus, reviewerID string, reviewedAt time.Time) error {
	const query = `UPDATE edit_requests SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, reviewerID, reviewedAt); err != nil {
		return fmt.Errorf("update edit request status: %w", err)
	}
	return nil
}
