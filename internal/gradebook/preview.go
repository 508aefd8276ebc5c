package gradebook

import (
	"math"

	"github.com/saberes-app/gradebook-api/internal/models"
)

// Layout carries the weighted structure a preview is computed against. It is
// built once per loaded gradebook and shared by every enrollment's preview.
type Layout struct {
	Mode         models.GradingMode
	Dimensions   []models.Dimension
	Achievements []models.Achievement
	Columns      []models.ActivityColumn
	ScaleMin     float64
}

// NewLayout builds a Layout with the standard scale minimum.
func NewLayout(mode models.GradingMode, dims []models.Dimension, achievements []models.Achievement, columns []models.ActivityColumn) Layout {
	return Layout{
		Mode:         mode,
		Dimensions:   dims,
		Achievements: achievements,
		Columns:      columns,
		ScaleMin:     models.ScaleMin,
	}
}

// achievementScore resolves the preview score of a single achievement from
// the current (possibly unsaved) values, keyed by achievement or column ID.
// Empty cells count as the scale minimum: the preview deliberately shows the
// worst case so far, and is never persisted.
func (l Layout) achievementScore(achievementID string, values map[string]*float64) float64 {
	if l.Mode == models.ModeActivities {
		sum := 0.0
		count := 0
		for _, col := range l.Columns {
			if col.AchievementID != achievementID || !col.Active {
				continue
			}
			count++
			if v := values[col.ID]; v != nil && !math.IsNaN(*v) {
				sum += *v
			} else {
				sum += l.ScaleMin
			}
		}
		if count == 0 {
			return l.ScaleMin
		}
		return sum / float64(count)
	}

	if v := values[achievementID]; v != nil && !math.IsNaN(*v) {
		return *v
	}
	return l.ScaleMin
}

// DimensionAverage computes the weighted average of a dimension's
// achievements. Weights are relative: they are normalized by the total weight
// present, not by 100. The second return is false when the dimension has no
// weighted achievements.
func (l Layout) DimensionAverage(dimensionID string, values map[string]*float64) (float64, bool) {
	totalWeight := 0.0
	sum := 0.0
	for _, a := range l.Achievements {
		if a.DimensionID != dimensionID || a.Percentage <= 0 {
			continue
		}
		totalWeight += a.Percentage
		sum += l.achievementScore(a.ID, values) * a.Percentage
	}
	if totalWeight == 0 {
		return 0, false
	}
	return sum / totalWeight, true
}

// FinalPreview computes the live final score preview: the weighted average of
// dimension averages, excluding dimensions with zero total weight. The second
// return is false when no dimension carries weight, in which case the final
// score is undefined and callers should render a placeholder.
func (l Layout) FinalPreview(values map[string]*float64) (float64, bool) {
	totalWeight := 0.0
	sum := 0.0
	for _, d := range l.Dimensions {
		if d.Percentage <= 0 {
			continue
		}
		avg, ok := l.DimensionAverage(d.ID, values)
		if !ok {
			continue
		}
		totalWeight += d.Percentage
		sum += avg * d.Percentage
	}
	if totalWeight == 0 {
		return 0, false
	}
	return Round2(sum / totalWeight), true
}
