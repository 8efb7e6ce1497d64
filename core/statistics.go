package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core/models"
	"timekeep.io/timekeep/utils"
)

// DayCompletion is one calendar day's aggregate against the daily goal.
type DayCompletion struct {
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	MetGoal bool    `json:"met_goal"`
	Records int     `json:"records"`
}

// RecordExtreme identifies the longest or shortest record in a range.
type RecordExtreme struct {
	RecordID string  `json:"record_id"`
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
}

// Statistics aggregates a user's records over a date range. Rejected and
// tombstoned records are excluded; open records contribute their live
// totals.
type Statistics struct {
	UserID        string  `json:"user_id"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	TotalHours    float64 `json:"total_hours"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	DaysWorked    int     `json:"days_worked"`
	DaysMetGoal   int     `json:"days_met_goal"`
	AverageHours  float64 `json:"average_hours"`

	// RangeWorkingDays counts the working days the range spans; it is
	// calendar capacity, not attendance.
	RangeWorkingDays int `json:"range_working_days"`

	Days     []DayCompletion `json:"days"`
	Longest  *RecordExtreme  `json:"longest,omitempty"`
	Shortest *RecordExtreme  `json:"shortest,omitempty"`
}

// GetStatistics aggregates the user's attendance over [from, to].
func (s *Service) GetStatistics(ctx context.Context, userID string, from, to time.Time) (*Statistics, error) {
	records, _, err := s.repo.Find(ctx, RecordFilter{UserID: userID, From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	kept := utils.Filter(records, func(r models.AttendanceRecord) bool {
		return r.Status != models.StatusRejected
	})
	for i := range kept {
		s.refreshLive(&kept[i])
	}

	stats := &Statistics{
		UserID: userID,
		From:   calendar.ToLocal(from).Format("2006-01-02"),
		To:     calendar.ToLocal(to).Format("2006-01-02"),
	}

	for day := calendar.StartOfDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		if calendar.IsWorkingDay(day, s.cfg.Holidays) {
			stats.RangeWorkingDays++
		}
	}

	byDay := utils.GroupBy(kept, func(r models.AttendanceRecord) string {
		return calendar.StartOfDay(r.ClockIn).Format("2006-01-02")
	})

	for date, dayRecords := range byDay {
		day := DayCompletion{Date: date, Records: len(dayRecords)}
		for _, r := range dayRecords {
			day.Hours += r.TotalHours
			stats.TotalHours += r.TotalHours
			stats.RegularHours += r.RegularHours
			stats.OvertimeHours += r.OvertimeHours

			if stats.Longest == nil || r.TotalHours > stats.Longest.Hours {
				stats.Longest = &RecordExtreme{RecordID: r.ID, Date: date, Hours: r.TotalHours}
			}
			if stats.Shortest == nil || r.TotalHours < stats.Shortest.Hours {
				stats.Shortest = &RecordExtreme{RecordID: r.ID, Date: date, Hours: r.TotalHours}
			}
		}
		day.MetGoal = day.Hours >= s.cfg.GoalHours
		if day.MetGoal {
			stats.DaysMetGoal++
		}
		stats.Days = append(stats.Days, day)
	}
	sort.Slice(stats.Days, func(i, j int) bool { return stats.Days[i].Date < stats.Days[j].Date })

	stats.DaysWorked = len(stats.Days)
	if stats.DaysWorked > 0 {
		stats.AverageHours = stats.TotalHours / float64(stats.DaysWorked)
	}
	return stats, nil
}

// TodayProgress is the user's live position against today's goal.
type TodayProgress struct {
	UserID         string  `json:"user_id"`
	Date           string  `json:"date"`
	HoursWorked    float64 `json:"hours_worked"`
	GoalHours      float64 `json:"goal_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	PercentOfGoal  float64 `json:"percent_of_goal"`
	ClockedIn      bool    `json:"clocked_in"`
	OnBreak        bool    `json:"on_break"`
}

// GetTodayProgress sums the user's records for today, live totals included.
func (s *Service) GetTodayProgress(ctx context.Context, userID string) (*TodayProgress, error) {
	now := s.now()
	from := calendar.StartOfDay(now)
	to := calendar.EndOfDay(now)

	records, _, err := s.repo.Find(ctx, RecordFilter{UserID: userID, From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	progress := &TodayProgress{
		UserID:    userID,
		Date:      from.Format("2006-01-02"),
		GoalHours: s.cfg.GoalHours,
	}
	for i := range records {
		r := &records[i]
		if r.Status == models.StatusRejected {
			continue
		}
		s.refreshLive(r)
		progress.HoursWorked += r.TotalHours
		if r.Status == models.StatusActive {
			progress.ClockedIn = true
			progress.OnBreak = r.OpenBreak() != nil
		}
	}
	progress.RemainingHours = progress.GoalHours - progress.HoursWorked
	if progress.RemainingHours < 0 {
		progress.RemainingHours = 0
	}
	if progress.GoalHours > 0 {
		progress.PercentOfGoal = progress.HoursWorked / progress.GoalHours * 100
	}
	return progress, nil
}

// GetProjectedCompletionTime linearly projects when the user will reach the
// daily goal at their current pace (worked hours over elapsed wall time,
// breaks included). It requires an active record; a goal already met
// projects to now.
func (s *Service) GetProjectedCompletionTime(ctx context.Context, userID string) (time.Time, error) {
	progress, err := s.GetTodayProgress(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if !progress.ClockedIn {
		return time.Time{}, fmt.Errorf("user %s is not clocked in: %w", userID, ErrInvalidState)
	}

	now := s.now()
	if progress.RemainingHours == 0 {
		return now, nil
	}

	active, err := s.repo.FindActive(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if active == nil {
		return time.Time{}, fmt.Errorf("user %s is not clocked in: %w", userID, ErrInvalidState)
	}
	s.refreshLive(active)

	elapsed := calendar.Hours(active.ClockIn, now)
	pace := 1.0
	if elapsed > 0 && active.TotalHours > 0 {
		pace = active.TotalHours / elapsed
	}
	remaining := time.Duration(progress.RemainingHours / pace * float64(time.Hour))
	return now.Add(remaining), nil
}
