package core_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
	"timekeep.io/timekeep/store"
)

// workDay records a completed day for the user: in at inHour, out at
// outHour, on the given date offset from Monday 2023-10-23.
func workDay(t *testing.T, svc *core.Service, clock *testClock, userID string, dayOffset, inHour, outHour int) *models.AttendanceRecord {
	t.Helper()
	ctx := context.Background()
	clock.now = refTime(inHour, 0).AddDate(0, 0, dayOffset)
	record, err := svc.ClockIn(ctx, userID, core.ClockInInput{})
	assert.NoError(t, err)
	clock.now = refTime(outHour, 0).AddDate(0, 0, dayOffset)
	record, err = svc.ClockOut(ctx, record.ID, nil)
	assert.NoError(t, err)
	return record
}

func TestGetStatistics(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := newTestService(refTime(9, 0))

	workDay(t, svc, clock, "u1", 0, 9, 17) // Monday: 8h, meets goal
	workDay(t, svc, clock, "u1", 1, 9, 13) // Tuesday: 4h, short day
	workDay(t, svc, clock, "u1", 2, 8, 20) // Wednesday: 12h, overtime

	// A rejected day must not count.
	rejected := workDay(t, svc, clock, "u1", 3, 9, 17)
	_, err := svc.Reject(ctx, rejected.ID, "mgr1", "duplicate entry")
	assert.NoError(t, err)

	from := refTime(0, 0)
	to := calendar.EndOfDay(refTime(0, 0).AddDate(0, 0, 4))

	stats, err := svc.GetStatistics(ctx, "u1", from, to)
	assert.NoError(t, err)

	assert.Equal(t, 3, stats.DaysWorked)
	assert.InDelta(t, 24.0, stats.TotalHours, 1e-9)
	assert.InDelta(t, 20.0, stats.RegularHours, 1e-9)
	assert.InDelta(t, 4.0, stats.OvertimeHours, 1e-9)
	assert.Equal(t, 2, stats.DaysMetGoal)
	assert.InDelta(t, 8.0, stats.AverageHours, 1e-9)

	// Monday through Friday.
	assert.Equal(t, 5, stats.RangeWorkingDays)

	assert.NotNil(t, stats.Longest)
	assert.InDelta(t, 12.0, stats.Longest.Hours, 1e-9)
	assert.Equal(t, "2023-10-25", stats.Longest.Date)
	assert.NotNil(t, stats.Shortest)
	assert.InDelta(t, 4.0, stats.Shortest.Hours, 1e-9)

	assert.Len(t, stats.Days, 3)
	assert.Equal(t, "2023-10-23", stats.Days[0].Date)
	assert.True(t, stats.Days[0].MetGoal)
	assert.False(t, stats.Days[1].MetGoal)
}

func TestGetStatisticsHolidaysReduceWorkingDays(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: refTime(9, 0)}
	repo := store.NewMemory()
	cfg := core.Config{Holidays: calendar.NewHolidaySet([]string{"2023-10-24"})}
	svc := core.NewService(repo, core.NewBroadcaster(), slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, core.WithClock(clock.Now))

	from := refTime(0, 0)
	to := calendar.EndOfDay(refTime(0, 0).AddDate(0, 0, 6))

	stats, err := svc.GetStatistics(ctx, "u1", from, to)
	assert.NoError(t, err)
	// Mon-Fri minus the Tuesday holiday.
	assert.Equal(t, 4, stats.RangeWorkingDays)
	assert.Equal(t, 0, stats.DaysWorked)
}

func TestGetTodayProgress(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := newTestService(refTime(9, 0))

	t.Run("Not clocked in", func(t *testing.T) {
		progress, err := svc.GetTodayProgress(ctx, "u1")
		assert.NoError(t, err)
		assert.False(t, progress.ClockedIn)
		assert.InDelta(t, 0.0, progress.HoursWorked, 1e-9)
		assert.InDelta(t, 8.0, progress.RemainingHours, 1e-9)
	})

	record, err := svc.ClockIn(ctx, "u1", core.ClockInInput{})
	assert.NoError(t, err)

	t.Run("Mid-day with an open break", func(t *testing.T) {
		clock.Set(12, 0)
		record, _, err = svc.AddBreak(ctx, record.ID, models.BreakLunch, nil)
		assert.NoError(t, err)

		clock.Set(12, 30)
		progress, err := svc.GetTodayProgress(ctx, "u1")
		assert.NoError(t, err)
		assert.True(t, progress.ClockedIn)
		assert.True(t, progress.OnBreak)
		// 3.5h elapsed minus the 30m the lunch has run so far.
		assert.InDelta(t, 3.0, progress.HoursWorked, 1e-9)
		assert.InDelta(t, 5.0, progress.RemainingHours, 1e-9)
		assert.InDelta(t, 37.5, progress.PercentOfGoal, 1e-9)
	})

	t.Run("After the goal is met", func(t *testing.T) {
		clock.Set(13, 0)
		record, _, err := svc.EndBreak(ctx, record.ID, record.Breaks[0].ID, nil)
		assert.NoError(t, err)
		clock.Set(19, 0)
		_, err = svc.ClockOut(ctx, record.ID, nil)
		assert.NoError(t, err)

		progress, err := svc.GetTodayProgress(ctx, "u1")
		assert.NoError(t, err)
		assert.False(t, progress.ClockedIn)
		// 10h elapsed minus 1h lunch.
		assert.InDelta(t, 9.0, progress.HoursWorked, 1e-9)
		assert.InDelta(t, 0.0, progress.RemainingHours, 1e-9)
	})
}

func TestGetProjectedCompletionTime(t *testing.T) {
	ctx := context.Background()

	t.Run("Full pace projects goal hours after clock in", func(t *testing.T) {
		svc, clock, _ := newTestService(refTime(9, 0))
		_, err := svc.ClockIn(ctx, "u1", core.ClockInInput{})
		assert.NoError(t, err)

		clock.Set(13, 0)
		projected, err := svc.GetProjectedCompletionTime(ctx, "u1")
		assert.NoError(t, err)
		assert.Equal(t, refTime(17, 0), projected)
	})

	t.Run("Break time slows the pace", func(t *testing.T) {
		svc, clock, _ := newTestService(refTime(9, 0))
		record, err := svc.ClockIn(ctx, "u1", core.ClockInInput{})
		assert.NoError(t, err)

		clock.Set(12, 0)
		record, _, err = svc.AddBreak(ctx, record.ID, models.BreakLunch, nil)
		assert.NoError(t, err)
		clock.Set(13, 0)
		_, _, err = svc.EndBreak(ctx, record.ID, record.Breaks[0].ID, nil)
		assert.NoError(t, err)

		// At 13:00: worked 3h of 4h elapsed, pace 0.75. Remaining 5h of
		// work takes 5/0.75 h of wall time.
		projected, err := svc.GetProjectedCompletionTime(ctx, "u1")
		assert.NoError(t, err)
		expected := refTime(13, 0).Add(time.Duration(5.0 / 0.75 * float64(time.Hour)))
		assert.WithinDuration(t, expected, projected, time.Second)
	})

	t.Run("Goal already met projects now", func(t *testing.T) {
		svc, clock, _ := newTestService(refTime(8, 0))
		_, err := svc.ClockIn(ctx, "u1", core.ClockInInput{})
		assert.NoError(t, err)

		clock.Set(17, 0)
		projected, err := svc.GetProjectedCompletionTime(ctx, "u1")
		assert.NoError(t, err)
		assert.Equal(t, refTime(17, 0), projected)
	})

	t.Run("Not clocked in", func(t *testing.T) {
		svc, _, _ := newTestService(refTime(9, 0))
		_, err := svc.GetProjectedCompletionTime(ctx, "u1")
		assert.ErrorIs(t, err, core.ErrInvalidState)
	})
}
