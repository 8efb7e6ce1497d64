package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
	"timekeep.io/timekeep/utils"
)

func refTime(hh, mm int) time.Time {
	return time.Date(2023, 10, 23, hh, mm, 0, 0, calendar.ReferenceZone)
}

func sampleRecord(userID string, clockIn, clockOut time.Time) *models.AttendanceRecord {
	lunchEnd := refTime(13, 0)
	record := &models.AttendanceRecord{
		ID:      uuid.NewString(),
		UserID:  userID,
		ClockIn: clockIn,
		Status:  models.StatusCompleted,
		Breaks: []models.BreakPeriod{
			{
				ID:              uuid.NewString(),
				Type:            models.BreakLunch,
				StartTime:       refTime(12, 0),
				EndTime:         &lunchEnd,
				DurationMinutes: 60,
			},
		},
		ClockOut:  &clockOut,
		CreatedAt: clockIn,
		UpdatedAt: clockOut,
	}
	record.Recompute(clockOut)
	return record
}

// backends returns every repository that can run without external servers.
func backends(t *testing.T) map[string]core.Repository {
	t.Helper()
	bunt, err := NewBunt(":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { bunt.Close() })

	return map[string]core.Repository{
		"memory": NewMemory(),
		"bunt":   bunt,
	}
}

func TestRoundTripPreservesComputedTotals(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			record := sampleRecord("u1", refTime(9, 0), refTime(18, 0))
			assert.NoError(t, repo.Save(ctx, record))

			loaded, err := repo.FindByID(ctx, record.ID)
			assert.NoError(t, err)

			assert.Equal(t, record.ID, loaded.ID)
			assert.True(t, record.ClockIn.Equal(loaded.ClockIn))
			assert.Len(t, loaded.Breaks, 1)
			assert.Equal(t, 60, loaded.Breaks[0].DurationMinutes)

			// Recomputing from the reloaded state must give identical
			// totals.
			loaded.Recompute(*loaded.ClockOut)
			assert.InDelta(t, record.TotalHours, loaded.TotalHours, 1e-9)
			assert.InDelta(t, record.RegularHours, loaded.RegularHours, 1e-9)
			assert.InDelta(t, record.OvertimeHours, loaded.OvertimeHours, 1e-9)
			assert.InDelta(t, 8.0, loaded.TotalHours, 1e-9)
		})
	}
}

func TestFindFilters(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			day0 := sampleRecord("u1", refTime(9, 0), refTime(18, 0))
			day1 := sampleRecord("u1", refTime(9, 0).AddDate(0, 0, 1), refTime(18, 0).AddDate(0, 0, 1))
			other := sampleRecord("u2", refTime(9, 0), refTime(18, 0))
			for _, r := range []*models.AttendanceRecord{day0, day1, other} {
				assert.NoError(t, repo.Save(ctx, r))
			}

			records, total, err := repo.Find(ctx, core.RecordFilter{UserID: "u1"})
			assert.NoError(t, err)
			assert.EqualValues(t, 2, total)
			assert.Len(t, records, 2)
			// Newest first.
			assert.Equal(t, day1.ID, records[0].ID)

			from := refTime(0, 0).AddDate(0, 0, 1)
			records, total, err = repo.Find(ctx, core.RecordFilter{UserID: "u1", From: &from})
			assert.NoError(t, err)
			assert.EqualValues(t, 1, total)
			assert.Equal(t, day1.ID, records[0].ID)

			status := models.StatusCompleted
			_, total, err = repo.Find(ctx, core.RecordFilter{Status: &status})
			assert.NoError(t, err)
			assert.EqualValues(t, 3, total)

			records, total, err = repo.Find(ctx, core.RecordFilter{UserID: "u1", Limit: 1, Offset: 1})
			assert.NoError(t, err)
			assert.EqualValues(t, 2, total)
			assert.Len(t, records, 1)
			assert.Equal(t, day0.ID, records[0].ID)
		})
	}
}

func TestFindActive(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			active, err := repo.FindActive(ctx, "u1")
			assert.NoError(t, err)
			assert.Nil(t, active)

			record := sampleRecord("u1", refTime(9, 0), refTime(18, 0))
			record.Status = models.StatusActive
			record.ClockOut = nil
			assert.NoError(t, repo.Save(ctx, record))

			active, err = repo.FindActive(ctx, "u1")
			assert.NoError(t, err)
			assert.NotNil(t, active)
			assert.Equal(t, record.ID, active.ID)

			active, err = repo.FindActive(ctx, "u2")
			assert.NoError(t, err)
			assert.Nil(t, active)
		})
	}
}

func TestDeleteTombstones(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			record := sampleRecord("u1", refTime(9, 0), refTime(18, 0))
			assert.NoError(t, repo.Save(ctx, record))

			assert.NoError(t, repo.Delete(ctx, record.ID, refTime(19, 0)))

			_, err := repo.FindByID(ctx, record.ID)
			assert.ErrorIs(t, err, core.ErrNotFound)

			_, total, err := repo.Find(ctx, core.RecordFilter{UserID: "u1"})
			assert.NoError(t, err)
			assert.EqualValues(t, 0, total)

			assert.ErrorIs(t, repo.Delete(ctx, record.ID, refTime(20, 0)), core.ErrNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, "missing", refTime(20, 0)), core.ErrNotFound)
		})
	}
}

func TestSaveIsolatesCallerState(t *testing.T) {
	// Mutating the caller's copy after Save must not leak into the store.
	ctx := context.Background()
	repo := NewMemory()

	record := sampleRecord("u1", refTime(9, 0), refTime(18, 0))
	assert.NoError(t, repo.Save(ctx, record))

	record.Breaks[0].DurationMinutes = 999
	record.Notes = "scribbled after save"

	loaded, err := repo.FindByID(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, 60, loaded.Breaks[0].DurationMinutes)
	assert.Empty(t, loaded.Notes)

	record.ApprovedBy = utils.Ptr("mgr1")
	loaded, err = repo.FindByID(ctx, record.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded.ApprovedBy)
}
