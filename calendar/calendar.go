// Package calendar provides date/time arithmetic pinned to the company
// reference timezone. Every other package goes through here so that all
// sessions agree on "now" and "today".
package calendar

import "time"

// ReferenceZone is the canonical fixed offset (UTC+10, no daylight saving).
var ReferenceZone = time.FixedZone("UTC+10", 10*60*60)

// HolidaySet holds non-working calendar days keyed by "2006-01-02" in the
// reference zone.
type HolidaySet map[string]bool

func NewHolidaySet(dates []string) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}

func (h HolidaySet) Contains(t time.Time) bool {
	return h[ToLocal(t).Format("2006-01-02")]
}

// Now returns the current time in the reference zone.
func Now() time.Time {
	return time.Now().In(ReferenceZone)
}

// ToLocal canonicalizes a timestamp to the reference zone.
func ToLocal(t time.Time) time.Time {
	return t.In(ReferenceZone)
}

// IsWorkingDay reports whether t falls on a weekday that is not a listed
// holiday.
func IsWorkingDay(t time.Time, holidays HolidaySet) bool {
	lt := ToLocal(t)
	switch lt.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !holidays.Contains(lt)
}

func StartOfDay(t time.Time) time.Time {
	lt := ToLocal(t)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, ReferenceZone)
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// StartOfWeek returns midnight Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	lt := StartOfDay(t)
	offset := (int(lt.Weekday()) + 6) % 7
	return lt.AddDate(0, 0, -offset)
}

func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

func StartOfMonth(t time.Time) time.Time {
	lt := ToLocal(t)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, ReferenceZone)
}

func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Hours returns the wall-clock elapsed hours between a and b. Attendance
// totals use this, never WorkingHours.
func Hours(a, b time.Time) float64 {
	return b.Sub(a).Hours()
}

// WorkingHours returns the elapsed hours between a and b with whole
// non-working days excluded from the span. Reporting only.
func WorkingHours(a, b time.Time, holidays HolidaySet) float64 {
	if !b.After(a) {
		return 0
	}
	total := 0.0
	for day := StartOfDay(a); day.Before(b); day = day.AddDate(0, 0, 1) {
		if !IsWorkingDay(day, holidays) {
			continue
		}
		from := day
		if a.After(from) {
			from = ToLocal(a)
		}
		to := day.AddDate(0, 0, 1)
		if b.Before(to) {
			to = ToLocal(b)
		}
		if to.After(from) {
			total += to.Sub(from).Hours()
		}
	}
	return total
}

// IsWithinBusinessHours reports whether t falls inside the 08:00-18:00
// window on a weekday. Advisory only.
func IsWithinBusinessHours(t time.Time) bool {
	lt := ToLocal(t)
	switch lt.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return lt.Hour() >= 8 && lt.Hour() < 18
}

// IsLunchTime reports whether t falls inside the typical 11:30-14:00 lunch
// window. Advisory only.
func IsLunchTime(t time.Time) bool {
	lt := ToLocal(t)
	mins := lt.Hour()*60 + lt.Minute()
	return mins >= 11*60+30 && mins < 14*60
}
