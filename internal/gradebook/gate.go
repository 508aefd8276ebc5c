package gradebook

import (
	"time"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// GateState classifies whether a specific enrollment's cells are editable.
type GateState int

const (
	// GateOpen means the edit window has not closed yet.
	GateOpen GateState = iota
	// GateClosedNoGrant means the window is closed and no grant covers the
	// enrollment; cells are read-only. A period-level closure also lands
	// here, since it overrides every grant.
	GateClosedNoGrant
	// GateClosedFullGrant means the window is closed but an unexpired FULL
	// grant applies.
	GateClosedFullGrant
	// GateClosedPartialGrant means the window is closed but an unexpired
	// PARTIAL grant lists this enrollment.
	GateClosedPartialGrant
)

// String returns the state name.
func (s GateState) String() string {
	switch s {
	case GateOpen:
		return "OPEN"
	case GateClosedFullGrant:
		return "CLOSED_FULL_GRANT"
	case GateClosedPartialGrant:
		return "CLOSED_PARTIAL_GRANT"
	default:
		return "CLOSED_NO_GRANT"
	}
}

// Editable reports whether cells may be written in this state.
func (s GateState) Editable() bool {
	return s != GateClosedNoGrant
}

// EvaluateGate computes the gate state for one enrollment. It is a pure
// function of the clock, the period, and the grant list; callers re-evaluate
// on every render rather than persisting the result.
func EvaluateGate(now time.Time, period models.GradingPeriod, grants []models.EditGrant, enrollmentID string) GateState {
	if period.IsClosed {
		return GateClosedNoGrant
	}
	if period.WindowOpen(now) {
		return GateOpen
	}
	// Full grants take precedence over partial ones.
	for _, grant := range grants {
		if grant.GrantType == models.GrantFull && !grant.Expired(now) {
			return GateClosedFullGrant
		}
	}
	for _, grant := range grants {
		if grant.GrantType == models.GrantPartial && grant.Covers(now, enrollmentID) {
			return GateClosedPartialGrant
		}
	}
	return GateClosedNoGrant
}
