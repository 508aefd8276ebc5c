package models

import "time"

// GrantType distinguishes full-roster grants from enrollment-scoped ones.
type GrantType string

const (
	// GrantFull allows edits for every enrollment on the gradesheet.
	GrantFull GrantType = "FULL"
	// GrantPartial allows edits only for the enrollments it lists.
	GrantPartial GrantType = "PARTIAL"
)

// EditGrant is a time-boxed exception permitting edits after a grading
// period's edit window has closed.
type EditGrant struct {
	ID                  string    `db:"id" json:"id"`
	TeacherID           string    `db:"teacher_id" json:"teacher_id"`
	TeacherAssignmentID string    `db:"teacher_assignment_id" json:"teacher_assignment_id"`
	PeriodID            string    `db:"period_id" json:"period_id"`
	GrantType           GrantType `db:"grant_type" json:"grant_type"`
	ValidUntil          time.Time `db:"valid_until" json:"valid_until"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`

	// EnrollmentIDs lists the covered enrollments for PARTIAL grants.
	EnrollmentIDs []string `json:"enrollment_ids,omitempty"`
}

// Expired reports whether the grant has lapsed at the given instant.
func (g EditGrant) Expired(now time.Time) bool {
	return !now.Before(g.ValidUntil)
}

// Covers reports whether the grant permits editing the given enrollment at
// the given instant.
func (g EditGrant) Covers(now time.Time, enrollmentID string) bool {
	if g.Expired(now) {
		return false
	}
	if g.GrantType == GrantFull {
		return true
	}
	for _, id := range g.EnrollmentIDs {
		if id == enrollmentID {
			return true
		}
	}
	return false
}

// EditRequestStatus tracks the review lifecycle of an edit request.
type EditRequestStatus string

const (
	EditRequestPending  EditRequestStatus = "PENDING"
	EditRequestApproved EditRequestStatus = "APPROVED"
	EditRequestRejected EditRequestStatus = "REJECTED"
)

// EditRequest is a teacher's petition for an edit grant on a closed window.
type EditRequest struct {
	ID                  string            `db:"id" json:"id"`
	TeacherID           string            `db:"teacher_id" json:"teacher_id"`
	TeacherAssignmentID string            `db:"teacher_assignment_id" json:"teacher_assignment_id"`
	PeriodID            string            `db:"period_id" json:"period_id"`
	Reason              string            `db:"reason" json:"reason"`
	Status              EditRequestStatus `db:"status" json:"status"`
	ReviewedBy          *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
}

// EditRequestFilter scopes edit-request listings.
type EditRequestFilter struct {
	TeacherID string
	PeriodID  string
	Status    EditRequestStatus
}
