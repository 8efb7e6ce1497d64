// Package core implements the attendance and break accounting engine: the
// clock-in/clock-out lifecycle, the nested break lifecycle, and the derived
// hour totals consumed by reporting and payroll.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core/models"
)

const (
	DefaultFutureSkew   = 5 * time.Minute
	DefaultPendingAfter = 24 * time.Hour
)

// Config carries the engine's policy knobs. Zero values fall back to the
// defaults above.
type Config struct {
	// FutureSkew is how far ahead of now a supplied clock-in time may be.
	FutureSkew time.Duration
	// PendingAfter is the age past which an active record counts as a
	// forgotten clock-out.
	PendingAfter time.Duration
	// GoalHours is the daily completion goal used by statistics and
	// progress. The regular/overtime split is fixed at
	// models.DailyRegularHours regardless.
	GoalHours float64
	// Holidays feeds the calendar's working-day classification.
	Holidays calendar.HolidaySet
}

func (c Config) withDefaults() Config {
	if c.FutureSkew == 0 {
		c.FutureSkew = DefaultFutureSkew
	}
	if c.PendingAfter == 0 {
		c.PendingAfter = DefaultPendingAfter
	}
	if c.GoalHours == 0 {
		c.GoalHours = models.DailyRegularHours
	}
	return c
}

// Service owns the attendance record lifecycle. Every mutation follows
// read-current-state, verify the precondition still holds, write; the mutex
// serializes concurrent sessions hitting the same shared store so the second
// writer observes the first one's result and fails with ErrConflict instead
// of overwriting it.
type Service struct {
	repo   Repository
	bus    EventBus
	logger *slog.Logger
	cfg    Config
	now    func() time.Time

	mu sync.Mutex
}

type Option func(*Service)

// WithClock substitutes the clock source. Tests pin it to a fixed time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, bus EventBus, logger *slog.Logger, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
		cfg:    cfg.withDefaults(),
		now:    calendar.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClockInInput are the optional clock-in parameters. A nil At means now.
type ClockInInput struct {
	At       *time.Time
	Notes    string
	Location string
}

// ClockIn opens a new active record for the user. It fails with ErrConflict
// when the user already has an active record, and with a ValidationError
// when the supplied time is further ahead of now than the future-skew
// tolerance.
func (s *Service) ClockIn(ctx context.Context, userID string, input ClockInInput) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	at := now
	if input.At != nil {
		at = calendar.ToLocal(*input.At)
	}
	if at.After(now.Add(s.cfg.FutureSkew)) {
		return nil, &ValidationError{Errors: []string{fmt.Sprintf("clock in time is more than %s in the future", s.cfg.FutureSkew)}}
	}

	existing, err := s.repo.FindActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s already has an active attendance record: %w", userID, ErrConflict)
	}

	record := &models.AttendanceRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		ClockIn:   at,
		Status:    models.StatusActive,
		Breaks:    []models.BreakPeriod{},
		Notes:     input.Notes,
		Location:  input.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	record.Recompute(now)

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	s.publish(EventClockIn, record)
	s.logger.Info("clock in", slog.String("user_id", userID), slog.String("record_id", record.ID))
	return record, nil
}

// ClockOut completes an active record. Any still-open break is force-closed
// first: at its policy ceiling when it has outgrown it, otherwise at the
// clock-out time.
func (s *Service) ClockOut(ctx context.Context, id string, at *time.Time) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.StatusActive {
		return nil, fmt.Errorf("cannot clock out a %s record: %w", record.Status, ErrInvalidState)
	}

	now := s.now()
	end := now
	if at != nil {
		end = calendar.ToLocal(*at)
	}
	if !end.After(record.ClockIn) {
		return nil, &ValidationError{Errors: []string{"clock out time must be after clock in time"}}
	}
	// A backdated clock-out must not land inside or before a break; forcing
	// the break closed would give it a negative duration that inflates the
	// totals.
	for i := range record.Breaks {
		if !end.After(record.Breaks[i].StartTime) {
			return nil, &ValidationError{Errors: []string{fmt.Sprintf(
				"clock out time must be after the %s break started at %s",
				record.Breaks[i].Type, record.Breaks[i].StartTime.Format("15:04"),
			)}}
		}
	}

	AutoCompleteBreaks(record.Breaks, end)
	if open := record.OpenBreak(); open != nil {
		if err := EndBreak(open, end); err != nil {
			return nil, err
		}
	}

	record.ClockOut = &end
	record.Status = models.StatusCompleted
	record.UpdatedAt = now
	record.Recompute(end)

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	s.publish(EventClockOut, record)
	s.logger.Info("clock out", slog.String("user_id", record.UserID), slog.String("record_id", record.ID))
	return record, nil
}

// AddBreak starts a break on an active record, or records a closed one when
// a duration is supplied. Hard validation failures block the mutation;
// warnings are returned alongside the updated record.
func (s *Service) AddBreak(ctx context.Context, id string, breakType models.BreakType, duration *time.Duration) (*models.AttendanceRecord, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if record.Status != models.StatusActive {
		return nil, nil, fmt.Errorf("cannot add a break to a %s record: %w", record.Status, ErrInvalidState)
	}

	now := s.now()
	period, err := StartBreak(breakType, now)
	if err != nil {
		return nil, nil, err
	}
	if duration != nil {
		end := now.Add(*duration)
		period.EndTime = &end
		period.DurationMinutes = models.RoundMinutes(*duration)
	} else if open := record.OpenBreak(); open != nil {
		return nil, nil, &ValidationError{Errors: []string{fmt.Sprintf("a %s break is already in progress", open.Type)}}
	}

	validation := ValidateBreak(&period, record.Breaks, now)
	if err := validation.Err(); err != nil {
		return nil, nil, err
	}
	for _, w := range validation.Warnings {
		s.logger.Warn("break warning", slog.String("record_id", record.ID), slog.String("warning", w))
	}

	record.Breaks = append(record.Breaks, period)
	record.UpdatedAt = now
	record.Recompute(now)

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, nil, err
	}
	s.publish(EventAddBreak, record)
	return record, validation.Warnings, nil
}

// EndBreak closes an open break on an active record.
func (s *Service) EndBreak(ctx context.Context, id, breakID string, at *time.Time) (*models.AttendanceRecord, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if record.Status != models.StatusActive {
		return nil, nil, fmt.Errorf("cannot end a break on a %s record: %w", record.Status, ErrInvalidState)
	}

	var period *models.BreakPeriod
	for i := range record.Breaks {
		if record.Breaks[i].ID == breakID {
			period = &record.Breaks[i]
			break
		}
	}
	if period == nil {
		return nil, nil, fmt.Errorf("break %s: %w", breakID, ErrNotFound)
	}

	now := s.now()
	end := now
	if at != nil {
		end = calendar.ToLocal(*at)
	}
	if err := EndBreak(period, end); err != nil {
		return nil, nil, err
	}

	validation := ValidateBreak(period, record.Breaks, now)
	if err := validation.Err(); err != nil {
		return nil, nil, err
	}

	record.UpdatedAt = now
	record.Recompute(now)

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, nil, err
	}
	s.publish(EventEndBreak, record)
	return record, validation.Warnings, nil
}

// Approve marks a record approved. Who may approve is decided by the
// caller's authorization layer, not here.
func (s *Service) Approve(ctx context.Context, id, approverID string) (*models.AttendanceRecord, error) {
	return s.finalize(ctx, id, approverID, models.StatusApproved, "")
}

// Reject marks a record rejected and appends the reason to its notes.
func (s *Service) Reject(ctx context.Context, id, approverID, reason string) (*models.AttendanceRecord, error) {
	return s.finalize(ctx, id, approverID, models.StatusRejected, reason)
}

func (s *Service) finalize(ctx context.Context, id, approverID string, status models.AttendanceStatus, reason string) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status.Terminal() {
		return nil, fmt.Errorf("record %s is already %s: %w", id, record.Status, ErrInvalidState)
	}

	now := s.now()
	record.Status = status
	record.ApprovedBy = &approverID
	record.ApprovedAt = &now
	if reason != "" {
		if record.Notes != "" {
			record.Notes += "\n"
		}
		record.Notes += "Rejected: " + reason
	}
	record.UpdatedAt = now

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	s.publish(EventUpdate, record)
	return record, nil
}

// Delete tombstones a record. The row stays in storage for audit but
// disappears from every read path.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, s.now()); err != nil {
		return err
	}
	s.publish(EventUpdate, record)
	s.logger.Info("record deleted", slog.String("user_id", record.UserID), slog.String("record_id", record.ID))
	return nil
}

// refreshLive recomputes an active record's totals against now, after
// capping any overlong open break at its policy ceiling. It touches only the
// in-memory copy; reads never write back.
func (s *Service) refreshLive(record *models.AttendanceRecord) {
	if record == nil || record.Status != models.StatusActive {
		return
	}
	now := s.now()
	AutoCompleteBreaks(record.Breaks, now)
	record.Recompute(now)
}

// FindByID returns the record or ErrNotFound. Open records carry live
// totals.
func (s *Service) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshLive(record)
	return record, nil
}

// FindByUserID returns the user's records matching the filter, newest first,
// with the pre-pagination total.
func (s *Service) FindByUserID(ctx context.Context, userID string, filter RecordFilter) ([]models.AttendanceRecord, int64, error) {
	filter.UserID = userID
	records, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range records {
		s.refreshLive(&records[i])
	}
	return records, total, nil
}

// FindActiveEntry returns the user's open record, or nil when the user is
// not clocked in.
func (s *Service) FindActiveEntry(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	record, err := s.repo.FindActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.refreshLive(record)
	return record, nil
}

// FindPendingEntries returns active records whose clock-in is older than the
// pending threshold: forgotten clock-outs. Detection only, it never closes
// them.
func (s *Service) FindPendingEntries(ctx context.Context) ([]models.AttendanceRecord, error) {
	status := models.StatusActive
	records, _, err := s.repo.Find(ctx, RecordFilter{Status: &status})
	if err != nil {
		return nil, err
	}
	now := s.now()
	pending := make([]models.AttendanceRecord, 0, len(records))
	for i := range records {
		if now.Sub(records[i].ClockIn) > s.cfg.PendingAfter {
			s.refreshLive(&records[i])
			pending = append(pending, records[i])
		}
	}
	return pending, nil
}

func (s *Service) publish(t EventType, record *models.AttendanceRecord) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(Event{
		Type:     t,
		UserID:   record.UserID,
		RecordID: record.ID,
		At:       s.now(),
	})
}
