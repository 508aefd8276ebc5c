package gradebook

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
)

// SaveItem is one cell write handed to the Saver. A nil Value clears the
// stored score.
type SaveItem struct {
	Key   Key
	Value *float64
}

// BlockedItem reports a write the server refused.
type BlockedItem struct {
	Key    Key
	Reason string
}

// SaveResult is the outcome of a save call: which items were refused and the
// server-recomputed aggregates for the enrollments it accepted.
type SaveResult struct {
	Blocked  []BlockedItem
	Computed []models.ComputedScore
}

// Saver persists cell writes. Implementations must treat the batch as a
// partial-success operation: blocked items are reported in the result, not as
// an error.
type Saver interface {
	Save(ctx context.Context, items []SaveItem) (*SaveResult, error)
}

// Options tunes a Session. Zero values fall back to the standard intervals.
type Options struct {
	Debounce time.Duration
	SavedTTL time.Duration
	ScaleMin float64
	ScaleMax float64
	Logger   *zap.Logger

	// OnChange, when set, is invoked with the new cell state after every
	// status transition. It runs on the session's internal goroutines and
	// must not block.
	OnChange func(Key, Cell)
}

const (
	defaultDebounce = 700 * time.Millisecond
	defaultSavedTTL = 1200 * time.Millisecond
)

// Session owns the editing lifecycle of one loaded gradebook: it accepts
// keystrokes, debounces per-cell autosaves, runs bulk flushes, and keeps the
// Store's status fields in sync with save outcomes.
type Session struct {
	store *Store
	saver Saver
	opts  Options

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	timers   map[Key]*time.Timer
	inflight map[Key]bool
	closed   bool
}

// NewSession wires a session over a seeded store.
func NewSession(store *Store, saver Saver, opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.SavedTTL <= 0 {
		opts.SavedTTL = defaultSavedTTL
	}
	if opts.ScaleMin == 0 && opts.ScaleMax == 0 {
		opts.ScaleMin = models.ScaleMin
		opts.ScaleMax = models.ScaleMax
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		store:    store,
		saver:    saver,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[Key]*time.Timer),
		inflight: make(map[Key]bool),
	}
}

// Input records a keystroke: the raw value is sanitized and clamped, the cell
// turns dirty, and the cell's autosave timer restarts. Each keystroke resets
// the countdown, so a save fires only after the user pauses.
func (s *Session) Input(key Key, raw string) Cell {
	clean := ClampToRange(Sanitize(raw), s.opts.ScaleMin, s.opts.ScaleMax)
	cell := s.store.Edit(key, clean)
	s.notify(key, cell)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cell
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(s.opts.Debounce, func() {
		s.flushCell(key)
	})
	return cell
}

// flushCell runs when a cell's debounce timer fires. It re-reads the cell, so
// edits made after the timer was armed are what actually get saved.
func (s *Session) flushCell(key Key) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	if s.inflight[key] {
		// One outstanding request per cell; try again after the current
		// one settles.
		s.timers[key] = time.AfterFunc(s.opts.Debounce, func() {
			s.flushCell(key)
		})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	cell, ok := s.store.Cell(key)
	if !ok || !cell.Dirty() {
		return
	}
	clean := Sanitize(cell.Raw)
	if Partial(clean) {
		// Mid-keystroke token, not an error. The cell stays dirty and a
		// later edit or flush picks it up.
		return
	}
	value := ParseOrNull(clean)
	if msg := s.validate(value); msg != "" {
		s.markError(key, msg)
		return
	}

	s.mu.Lock()
	s.inflight[key] = true
	s.mu.Unlock()

	s.store.MarkSaving(key)
	if c, ok := s.store.Cell(key); ok {
		s.notify(key, c)
	}
	go s.save(key, clean, value)
}

// save issues the network write for one cell and applies the outcome.
func (s *Session) save(key Key, submitted string, value *float64) {
	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	result, err := s.saver.Save(s.ctx, []SaveItem{{Key: key, Value: value}})
	if s.ctx.Err() != nil {
		// Session closed while the request was in flight; drop the result.
		return
	}
	if err != nil {
		s.opts.Logger.Warn("cell save failed",
			zap.String("enrollment_id", key.EnrollmentID),
			zap.String("target_id", key.TargetID),
			zap.Error(err))
		s.markError(key, "save failed")
		return
	}
	for _, b := range result.Blocked {
		if b.Key == key {
			s.markError(key, b.Reason)
			return
		}
	}
	s.store.Confirm(key, submitted)
	s.store.ApplyComputed(result.Computed)
	if c, ok := s.store.Cell(key); ok {
		s.notify(key, c)
	}
	time.AfterFunc(s.opts.SavedTTL, func() {
		if s.ctx.Err() != nil {
			return
		}
		s.store.ClearSaved(key)
		if c, ok := s.store.Cell(key); ok {
			s.notify(key, c)
		}
	})
}

// Flush saves every dirty cell in one batch. Validation is fail-fast: if any
// dirty cell holds an unparseable or out-of-range value, those cells are
// flagged and nothing is sent. Partial in-progress tokens are skipped
// silently. Blocked items come back flagged on their cells with the base
// untouched, so they stay dirty; accepted items advance their bases.
func (s *Session) Flush(ctx context.Context) (*SaveResult, error) {
	keys := s.store.DirtyKeys()
	if len(keys) == 0 {
		return &SaveResult{}, nil
	}

	s.mu.Lock()
	for _, key := range keys {
		if t, ok := s.timers[key]; ok {
			t.Stop()
			delete(s.timers, key)
		}
	}
	s.mu.Unlock()

	items := make([]SaveItem, 0, len(keys))
	submitted := make(map[Key]string, len(keys))
	invalid := 0
	for _, key := range keys {
		cell, ok := s.store.Cell(key)
		if !ok {
			continue
		}
		clean := Sanitize(cell.Raw)
		if Partial(clean) {
			continue
		}
		value := ParseOrNull(clean)
		if msg := s.validate(value); msg != "" {
			s.markError(key, msg)
			invalid++
			continue
		}
		items = append(items, SaveItem{Key: key, Value: value})
		submitted[key] = clean
	}
	if invalid > 0 {
		return nil, appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("%d cells hold invalid values", invalid))
	}
	if len(items) == 0 {
		return &SaveResult{}, nil
	}

	result, err := s.saver.Save(ctx, items)
	if err != nil {
		for _, item := range items {
			s.markError(item.Key, "save failed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bulk save failed")
	}

	blocked := make(map[Key]string, len(result.Blocked))
	for _, b := range result.Blocked {
		blocked[b.Key] = b.Reason
	}
	for _, item := range items {
		if reason, ok := blocked[item.Key]; ok {
			s.markError(item.Key, reason)
			continue
		}
		s.store.Confirm(item.Key, submitted[item.Key])
		if c, ok := s.store.Cell(item.Key); ok {
			s.notify(item.Key, c)
		}
	}
	s.store.ApplyComputed(result.Computed)
	return result, nil
}

// Close tears the session down: pending timers are stopped and results of any
// in-flight saves are discarded. The store itself stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) validate(value *float64) string {
	if value == nil {
		return ""
	}
	if math.IsNaN(*value) {
		return "invalid number"
	}
	if *value < s.opts.ScaleMin || *value > s.opts.ScaleMax {
		return fmt.Sprintf("score must be between %s and %s", FormatScore(s.opts.ScaleMin), FormatScore(s.opts.ScaleMax))
	}
	return ""
}

func (s *Session) markError(key Key, message string) {
	s.store.MarkError(key, message)
	if c, ok := s.store.Cell(key); ok {
		s.notify(key, c)
	}
}

func (s *Session) notify(key Key, cell Cell) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(key, cell)
	}
}
