package models

import "time"

// GradingPeriod models a grading period within an academic year. EditDeadline
// closes the ordinary edit window; IsClosed is an administrative override that
// makes the period read-only regardless of any grant.
type GradingPeriod struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	YearID       string    `db:"year_id" json:"year_id"`
	Position     int       `db:"position" json:"position"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	EditDeadline time.Time `db:"edit_deadline" json:"edit_deadline"`
	IsClosed     bool      `db:"is_closed" json:"is_closed"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// WindowOpen reports whether the ordinary edit window is still open at the
// given instant. The IsClosed override is checked separately.
func (p GradingPeriod) WindowOpen(now time.Time) bool {
	return now.Before(p.EditDeadline)
}
