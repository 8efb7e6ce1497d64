package models

import (
	"math"
	"time"
)

type BreakType string

const (
	BreakLunch    BreakType = "lunch"
	BreakShort    BreakType = "short_break"
	BreakExtended BreakType = "extended_break"
)

// BreakPeriod is a bounded pause nested within exactly one AttendanceRecord.
// An absent EndTime means the break is still open; once closed it is
// immutable.
type BreakPeriod struct {
	ID              string     `bson:"id" json:"id"`
	Type            BreakType  `bson:"type" json:"type"`
	StartTime       time.Time  `bson:"start_time" json:"start_time"`
	EndTime         *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	DurationMinutes int        `bson:"duration" json:"duration"`
	IsPaid          bool       `bson:"is_paid" json:"is_paid"`
}

// IntervalEnd is the close time for a closed break, now for an open one.
// Overlap checks treat an open break as running up to now.
func (b *BreakPeriod) IntervalEnd(now time.Time) time.Time {
	if b.EndTime != nil {
		return *b.EndTime
	}
	return now
}

// Minutes is the break's duration as of now: the recorded duration once
// closed, the live duration while open.
func (b *BreakPeriod) Minutes(now time.Time) float64 {
	if b.EndTime != nil {
		return float64(b.DurationMinutes)
	}
	m := now.Sub(b.StartTime).Minutes()
	if m < 0 {
		return 0
	}
	return m
}

// Overlaps reports whether the half-open intervals of b and other intersect.
// Touching intervals (one ends exactly where the other starts) do not
// overlap.
func (b *BreakPeriod) Overlaps(other *BreakPeriod, now time.Time) bool {
	return b.StartTime.Before(other.IntervalEnd(now)) && other.StartTime.Before(b.IntervalEnd(now))
}

// RoundMinutes converts a span to whole minutes, rounding half up.
func RoundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
