package models

import (
	"time"

	"timekeep.io/timekeep/calendar"
)

type AttendanceStatus string

const (
	StatusActive    AttendanceStatus = "active"
	StatusCompleted AttendanceStatus = "completed"
	StatusApproved  AttendanceStatus = "approved"
	StatusRejected  AttendanceStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s AttendanceStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// DailyRegularHours is the per-day goal; anything above it counts as
// overtime.
const DailyRegularHours = 8.0

// AttendanceRecord is one user's single workday session. The derived fields
// (totals and the advisory flags) are always recomputed via Recompute, never
// hand-edited.
type AttendanceRecord struct {
	ID       string           `gorm:"primaryKey;column:id;type:varchar(36)" bson:"_id" json:"id"`
	UserID   string           `gorm:"column:user_id;type:varchar(36);index;not null" bson:"user_id" json:"user_id"`
	ClockIn  time.Time        `gorm:"column:clock_in;not null" bson:"clock_in" json:"clock_in"`
	ClockOut *time.Time       `gorm:"column:clock_out" bson:"clock_out,omitempty" json:"clock_out,omitempty"`
	Status   AttendanceStatus `gorm:"column:status;type:varchar(20);index;not null" bson:"status" json:"status"`

	Breaks []BreakPeriod `gorm:"serializer:json;type:json" bson:"breaks" json:"breaks"`

	TotalHours       float64 `gorm:"column:total_hours;type:decimal(10,2)" bson:"total_hours" json:"total_hours"`
	RegularHours     float64 `gorm:"column:regular_hours;type:decimal(10,2)" bson:"regular_hours" json:"regular_hours"`
	OvertimeHours    float64 `gorm:"column:overtime_hours;type:decimal(10,2)" bson:"overtime_hours" json:"overtime_hours"`
	IsLate           bool    `gorm:"column:is_late" bson:"is_late" json:"is_late"`
	IsEarlyDeparture bool    `gorm:"column:is_early_departure" bson:"is_early_departure" json:"is_early_departure"`

	ApprovedBy *string    `gorm:"column:approved_by;type:varchar(36)" bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `gorm:"column:approved_at" bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	Notes      string     `gorm:"column:notes;type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	Location   string     `gorm:"column:location;type:varchar(255)" bson:"location,omitempty" json:"location,omitempty"`

	CreatedAt time.Time  `gorm:"column:created_at;not null" bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null" bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index" bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// EffectiveEnd is the clock-out time for a closed record, now for an open
// one. Live and final totals must use the same rule.
func (r *AttendanceRecord) EffectiveEnd(now time.Time) time.Time {
	if r.ClockOut != nil {
		return *r.ClockOut
	}
	return now
}

// OpenBreak returns the record's still-open break, if any. At most one can
// exist at a time.
func (r *AttendanceRecord) OpenBreak() *BreakPeriod {
	for i := range r.Breaks {
		if r.Breaks[i].EndTime == nil {
			return &r.Breaks[i]
		}
	}
	return nil
}

// BreakMinutes sums closed break durations plus the live duration of any
// open break as of now.
func (r *AttendanceRecord) BreakMinutes(now time.Time) float64 {
	var total float64
	for i := range r.Breaks {
		total += r.Breaks[i].Minutes(now)
	}
	return total
}

// Recompute refreshes the derived totals and advisory flags.
//
//	total   = Hours(clockIn, effectiveEnd) - breakMinutes/60, clamped to >= 0
//	regular = min(total, DailyRegularHours)
//	overtime = max(0, total - DailyRegularHours)
func (r *AttendanceRecord) Recompute(now time.Time) {
	end := r.EffectiveEnd(now)
	total := calendar.Hours(r.ClockIn, end) - r.BreakMinutes(now)/60
	if total < 0 {
		total = 0
	}
	r.TotalHours = total
	if total > DailyRegularHours {
		r.RegularHours = DailyRegularHours
		r.OvertimeHours = total - DailyRegularHours
	} else {
		r.RegularHours = total
		r.OvertimeHours = 0
	}

	r.IsLate = calendar.ToLocal(r.ClockIn).Hour() > 9
	r.IsEarlyDeparture = r.ClockOut != nil && calendar.ToLocal(*r.ClockOut).Hour() < 17
}

// Clone deep-copies the record so callers can recompute live totals without
// aliasing the stored breaks.
func (r *AttendanceRecord) Clone() *AttendanceRecord {
	dup := *r
	dup.Breaks = make([]BreakPeriod, len(r.Breaks))
	copy(dup.Breaks, r.Breaks)
	return &dup
}
