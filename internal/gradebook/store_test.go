package gradebook

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saberes-app/gradebook-api/internal/models"
)

func TestStoreSeedAndDirty(t *testing.T) {
	store := NewStore()
	key := Key{EnrollmentID: "enr-1", TargetID: "ach-1"}
	store.Seed(map[Key]string{key: "3.5"}, nil)

	cell, ok := store.Cell(key)
	require.True(t, ok)
	assert.False(t, cell.Dirty())
	assert.Empty(t, store.DirtyKeys())

	store.Edit(key, "3.7")
	cell, _ = store.Cell(key)
	assert.True(t, cell.Dirty())
	assert.Equal(t, "3.7", cell.Raw)
	assert.Equal(t, "3.5", cell.Base)
	assert.Equal(t, []Key{key}, store.DirtyKeys())
}

func TestStoreEditClearsStaleStatus(t *testing.T) {
	store := NewStore()
	key := Key{EnrollmentID: "enr-1", TargetID: "ach-1"}
	store.Seed(map[Key]string{key: "3.5"}, nil)
	store.Edit(key, "3.7")
	store.MarkError(key, "save failed")

	cell := store.Edit(key, "3.8")
	assert.Equal(t, StatusNone, cell.Status)
	assert.Empty(t, cell.Message)
}

func TestStoreConfirmAdvancesBaseOnly(t *testing.T) {
	store := NewStore()
	key := Key{EnrollmentID: "enr-1", TargetID: "ach-1"}
	store.Seed(map[Key]string{key: "3.5"}, nil)
	store.Edit(key, "3.7")
	store.MarkSaving(key)

	// The user keeps typing while the save is in flight.
	store.Edit(key, "3.9")
	store.Confirm(key, "3.7")

	cell, _ := store.Cell(key)
	assert.Equal(t, "3.7", cell.Base)
	assert.Equal(t, "3.9", cell.Raw)
	assert.True(t, cell.Dirty(), "cell edited during save must stay dirty")
	assert.Equal(t, StatusSaved, cell.Status)
}

func TestStoreMarkErrorKeepsCellDirty(t *testing.T) {
	store := NewStore()
	key := Key{EnrollmentID: "enr-1", TargetID: "ach-1"}
	store.Seed(map[Key]string{key: "3.5"}, nil)
	store.Edit(key, "4.2")
	store.MarkError(key, "edit window closed")

	cell, _ := store.Cell(key)
	assert.Equal(t, StatusError, cell.Status)
	assert.Equal(t, "edit window closed", cell.Message)
	assert.Equal(t, "3.5", cell.Base)
	assert.True(t, cell.Dirty())
}

func TestStoreClearSavedGuardsStatus(t *testing.T) {
	store := NewStore()
	key := Key{EnrollmentID: "enr-1", TargetID: "ach-1"}
	store.Seed(map[Key]string{key: "3.5"}, nil)
	store.Edit(key, "3.7")
	store.Confirm(key, "3.7")

	store.ClearSaved(key)
	cell, _ := store.Cell(key)
	assert.Equal(t, StatusNone, cell.Status)

	// A new error in the meantime must not be wiped by a late clear.
	store.Edit(key, "3.9")
	store.MarkError(key, "save failed")
	store.ClearSaved(key)
	cell, _ = store.Cell(key)
	assert.Equal(t, StatusError, cell.Status)
}

func TestStoreComputedCache(t *testing.T) {
	store := NewStore()
	store.Seed(nil, []models.ComputedScore{
		{EnrollmentID: "enr-1", FinalScore: 4.2, ScaleLabel: "HIGH"},
	})

	row, ok := store.Computed("enr-1")
	require.True(t, ok)
	assert.InDelta(t, 4.2, row.FinalScore, 1e-9)

	store.ApplyComputed([]models.ComputedScore{
		{EnrollmentID: "enr-1", FinalScore: 4.8, ScaleLabel: "SUPERIOR", CalculatedAt: time.Now()},
	})
	row, _ = store.Computed("enr-1")
	assert.InDelta(t, 4.8, row.FinalScore, 1e-9)
	assert.Equal(t, "SUPERIOR", row.ScaleLabel)
}

func TestStoreValues(t *testing.T) {
	store := NewStore()
	a := Key{EnrollmentID: "enr-1", TargetID: "ach-1"}
	b := Key{EnrollmentID: "enr-1", TargetID: "ach-2"}
	c := Key{EnrollmentID: "enr-1", TargetID: "ach-3"}
	other := Key{EnrollmentID: "enr-2", TargetID: "ach-1"}
	store.Seed(map[Key]string{a: "4.5", b: "", c: "", other: "3"}, nil)
	store.Edit(b, "2.")
	store.Edit(c, ".")

	values := store.Values("enr-1")
	require.Len(t, values, 3)
	require.NotNil(t, values["ach-1"])
	assert.InDelta(t, 4.5, *values["ach-1"], 1e-9)
	require.NotNil(t, values["ach-2"])
	assert.True(t, math.IsNaN(*values["ach-2"]), "trailing point is not a number yet")
	require.NotNil(t, values["ach-3"])
	assert.True(t, math.IsNaN(*values["ach-3"]), "bare point is not a number yet")
}
