package gradebook

import (
	"math"
	"sync"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// Status is the transient save state of a cell.
type Status int

const (
	StatusNone Status = iota
	StatusSaving
	StatusSaved
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	default:
		return "none"
	}
}

// Key identifies one editable cell. TargetID is an achievement ID in
// ACHIEVEMENTS mode and an activity-column ID in ACTIVITIES mode.
type Key struct {
	EnrollmentID string
	TargetID     string
}

// Cell holds the editing state of one gradebook cell. Base is the last value
// the server confirmed; a cell is dirty whenever Raw differs from Base.
type Cell struct {
	Raw     string
	Base    string
	Status  Status
	Message string
}

// Dirty reports whether the cell holds an unconfirmed edit.
func (c Cell) Dirty() bool {
	return c.Raw != c.Base
}

// Store is the in-memory cell state for one loaded gradebook. It is owned by
// a single Session; methods are safe for the session's timer goroutines.
type Store struct {
	mu       sync.RWMutex
	cells    map[Key]*Cell
	computed map[string]models.ComputedScore
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		cells:    make(map[Key]*Cell),
		computed: make(map[string]models.ComputedScore),
	}
}

// Seed resets the store to the server-confirmed values of a freshly loaded
// gradebook.
func (s *Store) Seed(base map[Key]string, computed []models.ComputedScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = make(map[Key]*Cell, len(base))
	for key, value := range base {
		s.cells[key] = &Cell{Raw: value, Base: value}
	}
	s.computed = make(map[string]models.ComputedScore, len(computed))
	for _, row := range computed {
		s.computed[row.EnrollmentID] = row
	}
}

// Edit records a keystroke: the raw value changes and any transient status is
// cleared so stale save feedback does not linger over fresh input.
func (s *Store) Edit(key Key, raw string) Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cells[key]
	if !ok {
		cell = &Cell{}
		s.cells[key] = cell
	}
	cell.Raw = raw
	cell.Status = StatusNone
	cell.Message = ""
	return *cell
}

// Cell returns a copy of the cell state.
func (s *Store) Cell(key Key) (Cell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cell, ok := s.cells[key]
	if !ok {
		return Cell{}, false
	}
	return *cell, true
}

// DirtyKeys snapshots the keys holding unconfirmed edits.
func (s *Store) DirtyKeys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []Key
	for key, cell := range s.cells {
		if cell.Dirty() {
			keys = append(keys, key)
		}
	}
	return keys
}

// MarkSaving flags the cell as having an outstanding save request.
func (s *Store) MarkSaving(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cell, ok := s.cells[key]; ok {
		cell.Status = StatusSaving
	}
}

// Confirm advances Base to the exact value the server confirmed was stored
// and flags the cell saved. Raw is left alone: if the user kept typing while
// the request was in flight the cell correctly stays dirty.
func (s *Store) Confirm(key Key, confirmed string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cells[key]
	if !ok {
		return
	}
	cell.Base = confirmed
	cell.Status = StatusSaved
	cell.Message = ""
}

// MarkError flags the cell with an error message. Base is untouched, so a
// blocked or failed write leaves the cell dirty and the typed value intact.
func (s *Store) MarkError(key Key, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cells[key]
	if !ok {
		return
	}
	cell.Status = StatusError
	cell.Message = message
}

// ClearSaved drops the transient saved flash, unless the status changed in
// the meantime.
func (s *Store) ClearSaved(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cell, ok := s.cells[key]; ok && cell.Status == StatusSaved {
		cell.Status = StatusNone
	}
}

// ApplyComputed overwrites the confirmed computed-score cache with rows from
// a save response, keyed by enrollment.
func (s *Store) ApplyComputed(rows []models.ComputedScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.computed[row.EnrollmentID] = row
	}
}

// Computed returns the last server-confirmed score for an enrollment.
func (s *Store) Computed(enrollmentID string) (models.ComputedScore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.computed[enrollmentID]
	return row, ok
}

// Values collects the current numeric values for one enrollment, keyed by
// target ID, in the shape the preview aggregator consumes. Unparseable cells
// and in-progress partial tokens ("." or a trailing ".") surface as NaN and
// count as unset in previews.
func (s *Store) Values(enrollmentID string) map[string]*float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make(map[string]*float64)
	for key, cell := range s.cells {
		if key.EnrollmentID != enrollmentID {
			continue
		}
		sanitized := Sanitize(cell.Raw)
		if Partial(sanitized) {
			nan := math.NaN()
			values[key.TargetID] = &nan
			continue
		}
		values[key.TargetID] = ParseOrNull(sanitized)
	}
	return values
}
