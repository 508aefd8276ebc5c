package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/gradebook"
	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
	"github.com/saberes-app/gradebook-api/pkg/jobs"
)

type gradesheetRepo interface {
	FindByAssignmentAndPeriod(ctx context.Context, teacherAssignmentID, periodID string) (*models.Gradesheet, error)
	Create(ctx context.Context, sheet *models.Gradesheet) error
	Dimensions(ctx context.Context) ([]models.Dimension, error)
	Achievements(ctx context.Context, gradesheetID string) ([]models.Achievement, error)
	Columns(ctx context.Context, gradesheetID string) ([]models.ActivityColumn, error)
}

type scoreRepo interface {
	ListByGradesheet(ctx context.Context, gradesheetID string) ([]models.ScoreCell, error)
	ListByEnrollment(ctx context.Context, gradesheetID, enrollmentID string) ([]models.ScoreCell, error)
	BulkUpsert(ctx context.Context, cells []models.ScoreCell) error
	ListActivityByGradesheet(ctx context.Context, gradesheetID string) ([]models.ActivityScoreCell, error)
	ListActivityByEnrollment(ctx context.Context, gradesheetID, enrollmentID string) ([]models.ActivityScoreCell, error)
	BulkUpsertActivity(ctx context.Context, cells []models.ActivityScoreCell) error
}

type computedScoreRepo interface {
	ListByGradesheet(ctx context.Context, gradesheetID string) ([]models.ComputedScore, error)
	Upsert(ctx context.Context, row *models.ComputedScore) error
	Delete(ctx context.Context, gradesheetID, enrollmentID string) error
}

type rosterReader interface {
	ListActiveByClass(ctx context.Context, classID, yearID string) ([]models.EnrollmentDetail, error)
	ActiveIDsByClass(ctx context.Context, classID, yearID string) ([]string, error)
}

type periodReader interface {
	FindByID(ctx context.Context, id string) (*models.GradingPeriod, error)
}

type assignmentReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.TeacherAssignmentDetail, error)
}

type grantReader interface {
	ListActive(ctx context.Context, teacherID, teacherAssignmentID, periodID string, now time.Time) ([]models.EditGrant, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type recalcQueue interface {
	Enqueue(job jobs.Job) error
}

// Actor identifies the authenticated caller for authorization checks.
type Actor struct {
	UserID string
	Role   models.UserRole
}

// RecalcPayload scopes a background recalculation job.
type RecalcPayload struct {
	TeacherAssignmentID string `json:"teacher_assignment_id"`
	PeriodID            string `json:"period_id"`
}

// JobTypeRecalc labels gradesheet recalculation jobs on the queue.
const JobTypeRecalc = "gradesheet.recalculate"

// GradebookService orchestrates snapshot loads, bulk score writes with
// edit-window gating, and final-score recomputation.
type GradebookService struct {
	gradesheets gradesheetRepo
	scores      scoreRepo
	computed    computedScoreRepo
	roster      rosterReader
	periods     periodReader
	assignments assignmentReader
	grants      grantReader
	cache       snapshotCache
	queue       recalcQueue
	validator   *validator.Validate
	logger      *zap.Logger
	snapshotTTL time.Duration
	scaleMin    float64
	scaleMax    float64
}

// GradebookServiceDeps bundles the construction dependencies.
type GradebookServiceDeps struct {
	Gradesheets gradesheetRepo
	Scores      scoreRepo
	Computed    computedScoreRepo
	Roster      rosterReader
	Periods     periodReader
	Assignments assignmentReader
	Grants      grantReader
	Cache       snapshotCache
	Queue       recalcQueue
	Validator   *validator.Validate
	Logger      *zap.Logger
	SnapshotTTL time.Duration
}

// NewGradebookService constructs a GradebookService.
func NewGradebookService(deps GradebookServiceDeps) *GradebookService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.SnapshotTTL <= 0 {
		deps.SnapshotTTL = 5 * time.Minute
	}
	return &GradebookService{
		gradesheets: deps.Gradesheets,
		scores:      deps.Scores,
		computed:    deps.Computed,
		roster:      deps.Roster,
		periods:     deps.Periods,
		assignments: deps.Assignments,
		grants:      deps.Grants,
		cache:       deps.Cache,
		queue:       deps.Queue,
		validator:   deps.Validator,
		logger:      deps.Logger,
		snapshotTTL: deps.SnapshotTTL,
		scaleMin:    models.ScaleMin,
		scaleMax:    models.ScaleMax,
	}
}

// AttachQueue wires the recalculation queue after construction. The queue
// handler is a method on this service, so the two reference each other.
func (s *GradebookService) AttachQueue(q recalcQueue) {
	s.queue = q
}

func snapshotCacheKey(teacherAssignmentID, periodID string) string {
	return fmt.Sprintf("gradebook:snapshot:%s:%s", teacherAssignmentID, periodID)
}

// Snapshot loads the full gradebook payload for one assignment/period pair.
// The result is cached; any accepted write invalidates it.
func (s *GradebookService) Snapshot(ctx context.Context, actor Actor, teacherAssignmentID, periodID string) (*models.GradebookSnapshot, error) {
	assignment, err := s.authorizedAssignment(ctx, actor, teacherAssignmentID)
	if err != nil {
		return nil, err
	}

	cacheKey := snapshotCacheKey(teacherAssignmentID, periodID)
	if s.cache != nil {
		var cached models.GradebookSnapshot
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading period")
	}

	sheet, err := s.ensureGradesheet(ctx, teacherAssignmentID, periodID)
	if err != nil {
		return nil, err
	}

	dims, err := s.gradesheets.Dimensions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dimensions")
	}
	achievements, err := s.gradesheets.Achievements(ctx, sheet.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievements")
	}

	snapshot := models.GradebookSnapshot{
		Period:       *period,
		Assignment:   *assignment,
		Gradesheet:   *sheet,
		Dimensions:   dims,
		Achievements: achievements,
		GeneratedAt:  time.Now().UTC(),
	}

	snapshot.Students, err = s.roster.ListActiveByClass(ctx, assignment.ClassID, assignment.YearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	snapshot.Cells, err = s.scores.ListByGradesheet(ctx, sheet.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}
	if sheet.Mode == models.ModeActivities {
		snapshot.Columns, err = s.gradesheets.Columns(ctx, sheet.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity columns")
		}
		snapshot.ActivityCells, err = s.scores.ListActivityByGradesheet(ctx, sheet.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity scores")
		}
	}
	snapshot.Computed, err = s.computed.ListByGradesheet(ctx, sheet.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load computed scores")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, snapshot, s.snapshotTTL); err != nil {
			s.logger.Warn("failed to cache gradebook snapshot", zap.Error(err))
		}
	}
	return &snapshot, nil
}

// BulkUpsertScores applies a batch of achievement-score writes with
// per-enrollment edit-window gating. Blocked writes are reported, accepted
// ones are persisted and their final scores recomputed.
func (s *GradebookService) BulkUpsertScores(ctx context.Context, actor Actor, req dto.BulkScoresRequest) (*dto.BulkScoresResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk scores payload")
	}
	for _, write := range req.Scores {
		if err := s.validateRange(write.Score); err != nil {
			return nil, err
		}
	}

	env, err := s.writeEnvironment(ctx, actor, req.TeacherAssignmentID, req.PeriodID, models.ModeAchievements)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkScoresResult{Computed: []models.ComputedScore{}}
	var accepted []models.ScoreCell
	touched := make(map[string]bool)
	for _, write := range req.Scores {
		if reason := env.blockReason(write.EnrollmentID); reason != "" {
			result.Blocked = append(result.Blocked, dto.BlockedWrite{
				EnrollmentID:  write.EnrollmentID,
				AchievementID: write.AchievementID,
				Reason:        reason,
			})
			continue
		}
		accepted = append(accepted, models.ScoreCell{
			EnrollmentID:  write.EnrollmentID,
			AchievementID: write.AchievementID,
			Score:         write.Score,
		})
		touched[write.EnrollmentID] = true
	}

	if len(accepted) > 0 {
		if err := s.scores.BulkUpsert(ctx, accepted); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist scores")
		}
		result.Updated = len(accepted)
		for enrollmentID := range touched {
			row, err := s.recomputeEnrollment(ctx, env.sheet, env.layout, enrollmentID)
			if err != nil {
				return nil, err
			}
			if row != nil {
				result.Computed = append(result.Computed, *row)
			}
		}
		s.invalidateSnapshot(ctx, req.TeacherAssignmentID, req.PeriodID)
	}
	return result, nil
}

// BulkUpsertActivityScores is the ACTIVITIES-mode counterpart of
// BulkUpsertScores, writing activity-column cells.
func (s *GradebookService) BulkUpsertActivityScores(ctx context.Context, actor Actor, req dto.BulkActivityScoresRequest) (*dto.BulkScoresResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk activity scores payload")
	}
	for _, write := range req.Scores {
		if err := s.validateRange(write.Score); err != nil {
			return nil, err
		}
	}

	env, err := s.writeEnvironment(ctx, actor, req.TeacherAssignmentID, req.PeriodID, models.ModeActivities)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkScoresResult{Computed: []models.ComputedScore{}}
	var accepted []models.ActivityScoreCell
	touched := make(map[string]bool)
	for _, write := range req.Scores {
		if reason := env.blockReason(write.EnrollmentID); reason != "" {
			result.Blocked = append(result.Blocked, dto.BlockedWrite{
				EnrollmentID: write.EnrollmentID,
				ColumnID:     write.ColumnID,
				Reason:       reason,
			})
			continue
		}
		accepted = append(accepted, models.ActivityScoreCell{
			EnrollmentID: write.EnrollmentID,
			ColumnID:     write.ColumnID,
			Score:        write.Score,
		})
		touched[write.EnrollmentID] = true
	}

	if len(accepted) > 0 {
		if err := s.scores.BulkUpsertActivity(ctx, accepted); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist activity scores")
		}
		result.Updated = len(accepted)
		for enrollmentID := range touched {
			row, err := s.recomputeEnrollment(ctx, env.sheet, env.layout, enrollmentID)
			if err != nil {
				return nil, err
			}
			if row != nil {
				result.Computed = append(result.Computed, *row)
			}
		}
		s.invalidateSnapshot(ctx, req.TeacherAssignmentID, req.PeriodID)
	}
	return result, nil
}

// Recalculate enqueues a background recomputation of every enrollment's
// final score on one gradesheet.
func (s *GradebookService) Recalculate(ctx context.Context, actor Actor, req dto.RecalculateRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recalculate payload")
	}
	if _, err := s.authorizedAssignment(ctx, actor, req.TeacherAssignmentID); err != nil {
		return err
	}
	// The ID is stable per assignment/period so repeat requests coalesce
	// while one recomputation is still queued.
	job := jobs.Job{
		ID:   fmt.Sprintf("recalc:%s:%s", req.TeacherAssignmentID, req.PeriodID),
		Type: JobTypeRecalc,
		Payload: RecalcPayload{
			TeacherAssignmentID: req.TeacherAssignmentID,
			PeriodID:            req.PeriodID,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue recalculation")
	}
	return nil
}

// HandleRecalcJob is the queue handler behind Recalculate. It recomputes the
// final score of every active enrollment on the gradesheet.
func (s *GradebookService) HandleRecalcJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(RecalcPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
	}

	assignment, err := s.assignments.FindDetailByID(ctx, payload.TeacherAssignmentID)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	sheet, err := s.gradesheets.FindByAssignmentAndPeriod(ctx, payload.TeacherAssignmentID, payload.PeriodID)
	if err != nil {
		return fmt.Errorf("load gradesheet: %w", err)
	}
	layout, err := s.buildLayout(ctx, sheet)
	if err != nil {
		return err
	}
	ids, err := s.roster.ActiveIDsByClass(ctx, assignment.ClassID, assignment.YearID)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	for _, enrollmentID := range ids {
		if _, err := s.recomputeEnrollment(ctx, sheet, layout, enrollmentID); err != nil {
			return err
		}
	}
	s.invalidateSnapshot(ctx, payload.TeacherAssignmentID, payload.PeriodID)
	s.logger.Info("gradesheet recalculated",
		zap.String("gradesheet_id", sheet.ID),
		zap.Int("enrollments", len(ids)))
	return nil
}

// writeEnv carries everything a bulk write needs after authorization.
type writeEnv struct {
	sheet  *models.Gradesheet
	layout gradebook.Layout
	period *models.GradingPeriod
	grants []models.EditGrant
	now    time.Time
	admin  bool
}

// blockReason returns the refusal reason for one enrollment, or "" if the
// write may proceed. Administrators bypass window gating but never a closed
// period.
func (e writeEnv) blockReason(enrollmentID string) string {
	if e.period.IsClosed {
		return "grading period closed"
	}
	if e.admin || e.period.WindowOpen(e.now) {
		return ""
	}
	state := gradebook.EvaluateGate(e.now, *e.period, e.grants, enrollmentID)
	if state.Editable() {
		return ""
	}
	hasUsable := false
	for _, grant := range e.grants {
		if !grant.Expired(e.now) {
			hasUsable = true
			break
		}
	}
	if hasUsable {
		return "enrollment not covered by grant"
	}
	if len(e.grants) > 0 {
		return "edit grant expired"
	}
	return "edit window closed"
}

func (s *GradebookService) writeEnvironment(ctx context.Context, actor Actor, teacherAssignmentID, periodID string, mode models.GradingMode) (*writeEnv, error) {
	if _, err := s.authorizedAssignment(ctx, actor, teacherAssignmentID); err != nil {
		return nil, err
	}
	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading period")
	}
	sheet, err := s.gradesheets.FindByAssignmentAndPeriod(ctx, teacherAssignmentID, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gradesheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradesheet")
	}
	if sheet.Mode != mode {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("gradesheet is in %s mode", sheet.Mode))
	}
	layout, err := s.buildLayout(ctx, sheet)
	if err != nil {
		return nil, err
	}

	env := &writeEnv{
		sheet:  sheet,
		layout: layout,
		period: period,
		now:    time.Now().UTC(),
		admin:  actor.Role == models.RoleAdmin,
	}
	if !env.admin && !period.WindowOpen(env.now) && !period.IsClosed {
		env.grants, err = s.grants.ListActive(ctx, actor.UserID, teacherAssignmentID, periodID, env.now)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load edit grants")
		}
	}
	return env, nil
}

func (s *GradebookService) authorizedAssignment(ctx context.Context, actor Actor, teacherAssignmentID string) (*models.TeacherAssignmentDetail, error) {
	assignment, err := s.assignments.FindDetailByID(ctx, teacherAssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignment")
	}
	if actor.Role != models.RoleAdmin && assignment.TeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another teacher")
	}
	return assignment, nil
}

func (s *GradebookService) ensureGradesheet(ctx context.Context, teacherAssignmentID, periodID string) (*models.Gradesheet, error) {
	sheet, err := s.gradesheets.FindByAssignmentAndPeriod(ctx, teacherAssignmentID, periodID)
	if err == nil {
		return sheet, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradesheet")
	}
	// First load creates the gradesheet in the default mode.
	sheet = &models.Gradesheet{
		TeacherAssignmentID: teacherAssignmentID,
		PeriodID:            periodID,
		Mode:                models.ModeAchievements,
	}
	if err := s.gradesheets.Create(ctx, sheet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create gradesheet")
	}
	return sheet, nil
}

func (s *GradebookService) buildLayout(ctx context.Context, sheet *models.Gradesheet) (gradebook.Layout, error) {
	dims, err := s.gradesheets.Dimensions(ctx)
	if err != nil {
		return gradebook.Layout{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dimensions")
	}
	achievements, err := s.gradesheets.Achievements(ctx, sheet.ID)
	if err != nil {
		return gradebook.Layout{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievements")
	}
	var columns []models.ActivityColumn
	if sheet.Mode == models.ModeActivities {
		columns, err = s.gradesheets.Columns(ctx, sheet.ID)
		if err != nil {
			return gradebook.Layout{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity columns")
		}
	}
	return gradebook.NewLayout(sheet.Mode, dims, achievements, columns), nil
}

// recomputeEnrollment recomputes one enrollment's authoritative final score.
// The score exists only while every required cell carries a value; otherwise
// any stored row is removed. Returns the stored row, or nil when incomplete.
func (s *GradebookService) recomputeEnrollment(ctx context.Context, sheet *models.Gradesheet, layout gradebook.Layout, enrollmentID string) (*models.ComputedScore, error) {
	values, complete, err := s.persistedValues(ctx, sheet, layout, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !complete {
		if err := s.computed.Delete(ctx, sheet.ID, enrollmentID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear computed score")
		}
		return nil, nil
	}
	final, ok := layout.FinalPreview(values)
	if !ok {
		return nil, nil
	}
	row := &models.ComputedScore{
		GradesheetID: sheet.ID,
		EnrollmentID: enrollmentID,
		FinalScore:   final,
		ScaleLabel:   models.ScaleLabelFor(final),
		CalculatedAt: time.Now().UTC(),
	}
	if err := s.computed.Upsert(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store computed score")
	}
	return row, nil
}

// persistedValues loads one enrollment's stored cells keyed the way the
// aggregator expects, and reports whether every required cell is filled.
func (s *GradebookService) persistedValues(ctx context.Context, sheet *models.Gradesheet, layout gradebook.Layout, enrollmentID string) (map[string]*float64, bool, error) {
	values := make(map[string]*float64)
	if sheet.Mode == models.ModeActivities {
		cells, err := s.scores.ListActivityByEnrollment(ctx, sheet.ID, enrollmentID)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity scores")
		}
		for _, cell := range cells {
			values[cell.ColumnID] = cell.Score
		}
		for _, col := range layout.Columns {
			if !col.Active {
				continue
			}
			if v, ok := values[col.ID]; !ok || v == nil {
				return values, false, nil
			}
		}
		return values, true, nil
	}

	cells, err := s.scores.ListByEnrollment(ctx, sheet.ID, enrollmentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}
	for _, cell := range cells {
		values[cell.AchievementID] = cell.Score
	}
	for _, achievement := range layout.Achievements {
		if v, ok := values[achievement.ID]; !ok || v == nil {
			return values, false, nil
		}
	}
	return values, true, nil
}

func (s *GradebookService) validateRange(score *float64) error {
	if score == nil {
		return nil
	}
	if *score < s.scaleMin || *score > s.scaleMax {
		return appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("score %.2f outside [%.2f, %.2f]", *score, s.scaleMin, s.scaleMax))
	}
	return nil
}

func (s *GradebookService) invalidateSnapshot(ctx context.Context, teacherAssignmentID, periodID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, snapshotCacheKey(teacherAssignmentID, periodID)); err != nil {
		s.logger.Warn("failed to invalidate snapshot cache", zap.Error(err))
	}
}
