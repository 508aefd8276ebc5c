package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// PeriodRepository reads grading periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// FindByID returns a grading period by identifier.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.GradingPeriod, error) {
	const query = `SELECT id, name, year_id, position, start_date, end_date, edit_deadline, is_closed, created_at, updated_at FROM grading_periods WHERE id = $1 LIMIT 1`
	var period models.GradingPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find period by id: %w", err)
	}
	return &period, nil
}

// ListByYear returns the grading periods of an academic year in order.
func (r *PeriodRepository) ListByYear(ctx context.Context, yearID string) ([]models.GradingPeriod, error) {
	const query = `SELECT id, name, year_id, position, start_date, end_date, edit_deadline, is_closed, created_at, updated_at FROM grading_periods WHERE year_id = $1 ORDER BY position ASC`
	var periods []models.GradingPeriod
	if err := r.db.SelectContext(ctx, &periods, query, yearID); err != nil {
		return nil, fmt.Errorf("list periods by year: %w", err)
	}
	return periods, nil
}
