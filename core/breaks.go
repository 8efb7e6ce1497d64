package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core/models"
)

// BreakPolicy describes one entry of the fixed break-type catalog.
type BreakPolicy struct {
	Type      models.BreakType
	Paid      bool
	Default   time.Duration
	Min       time.Duration
	Max       time.Duration
	MaxPerDay int
}

// The catalog is fixed; it is not user-configurable.
var breakPolicies = map[models.BreakType]BreakPolicy{
	models.BreakLunch: {
		Type:      models.BreakLunch,
		Paid:      false,
		Default:   60 * time.Minute,
		Min:       30 * time.Minute,
		Max:       120 * time.Minute,
		MaxPerDay: 1,
	},
	models.BreakShort: {
		Type:      models.BreakShort,
		Paid:      true,
		Default:   15 * time.Minute,
		Min:       5 * time.Minute,
		Max:       30 * time.Minute,
		MaxPerDay: 6,
	},
	models.BreakExtended: {
		Type:      models.BreakExtended,
		Paid:      false,
		Default:   45 * time.Minute,
		Min:       30 * time.Minute,
		Max:       90 * time.Minute,
		MaxPerDay: 2,
	},
}

// BreakPolicyFor looks up the catalog entry for a break type.
func BreakPolicyFor(t models.BreakType) (BreakPolicy, bool) {
	p, ok := breakPolicies[t]
	return p, ok
}

// StartBreak creates a new open break of the given type starting now.
func StartBreak(t models.BreakType, now time.Time) (models.BreakPeriod, error) {
	p, ok := BreakPolicyFor(t)
	if !ok {
		return models.BreakPeriod{}, &ValidationError{Errors: []string{fmt.Sprintf("unknown break type %q", t)}}
	}
	return models.BreakPeriod{
		ID:        uuid.NewString(),
		Type:      p.Type,
		StartTime: now,
		IsPaid:    p.Paid,
	}, nil
}

// EndBreak closes an open break and records its rounded duration in minutes.
func EndBreak(b *models.BreakPeriod, end time.Time) error {
	if b.StartTime.IsZero() {
		return fmt.Errorf("break %s has not been started: %w", b.ID, ErrInvalidState)
	}
	if b.EndTime != nil {
		return fmt.Errorf("break %s already ended: %w", b.ID, ErrInvalidState)
	}
	b.EndTime = &end
	b.DurationMinutes = models.RoundMinutes(end.Sub(b.StartTime))
	return nil
}

// BreakValidation separates hard errors, which block the operation, from
// warnings, which are recorded on the result but never block.
type BreakValidation struct {
	Errors   []string
	Warnings []string
}

func (v BreakValidation) OK() bool {
	return len(v.Errors) == 0
}

// Err returns the aggregated ValidationError, or nil when only warnings (or
// nothing) were found.
func (v BreakValidation) Err() error {
	if v.OK() {
		return nil
	}
	return &ValidationError{Errors: v.Errors, Warnings: v.Warnings}
}

// ValidateBreak checks b against the catalog and against the record's other
// breaks. An open break is treated as running up to now for both the
// duration and the overlap checks.
func ValidateBreak(b *models.BreakPeriod, existing []models.BreakPeriod, now time.Time) BreakValidation {
	var v BreakValidation

	if b.ID == "" {
		v.Errors = append(v.Errors, "break has no id")
	}
	if b.StartTime.IsZero() {
		v.Errors = append(v.Errors, "break has no start time")
		return v
	}

	policy, ok := BreakPolicyFor(b.Type)
	if !ok {
		v.Errors = append(v.Errors, fmt.Sprintf("unknown break type %q", b.Type))
		return v
	}

	if b.EndTime != nil && !b.EndTime.After(b.StartTime) {
		v.Errors = append(v.Errors, "break end time must be after its start time")
		return v
	}

	minutes := b.Minutes(now)
	if minutes > policy.Max.Minutes() {
		v.Errors = append(v.Errors, fmt.Sprintf("%s exceeds maximum duration of %d minutes", b.Type, int(policy.Max.Minutes())))
	}
	if b.EndTime != nil && minutes < policy.Min.Minutes() {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%s is shorter than the recommended minimum of %d minutes", b.Type, int(policy.Min.Minutes())))
	}

	sameType := 0
	for i := range existing {
		other := &existing[i]
		if other.ID == b.ID {
			continue
		}
		if other.Type == b.Type {
			sameType++
		}
		if b.Overlaps(other, now) {
			v.Errors = append(v.Errors, fmt.Sprintf("break overlaps an existing %s break", other.Type))
		}
	}
	if sameType >= policy.MaxPerDay {
		v.Errors = append(v.Errors, fmt.Sprintf("no more than %d %s breaks per day", policy.MaxPerDay, b.Type))
	}

	if b.Type == models.BreakLunch && !calendar.IsLunchTime(b.StartTime) {
		v.Warnings = append(v.Warnings, "lunch break taken outside typical lunch hours")
	}
	if !calendar.IsWithinBusinessHours(b.StartTime) {
		v.Warnings = append(v.Warnings, "break taken outside business hours")
	}

	return v
}

// AutoCompleteBreaks force-closes every open break whose live duration has
// already exceeded its type's maximum, at exactly start + max. This keeps an
// open break from ever growing past its policy ceiling, so clock-out totals
// stay deterministic even when no explicit end arrives. Returns how many
// breaks were closed.
func AutoCompleteBreaks(breaks []models.BreakPeriod, now time.Time) int {
	closed := 0
	for i := range breaks {
		b := &breaks[i]
		if b.EndTime != nil {
			continue
		}
		policy, ok := BreakPolicyFor(b.Type)
		if !ok {
			continue
		}
		if now.Sub(b.StartTime) > policy.Max {
			end := b.StartTime.Add(policy.Max)
			b.EndTime = &end
			b.DurationMinutes = models.RoundMinutes(policy.Max)
			closed++
		}
	}
	return closed
}
