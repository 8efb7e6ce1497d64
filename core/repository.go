package core

import (
	"context"
	"time"

	"timekeep.io/timekeep/core/models"
)

// RecordFilter narrows Find results. Zero values mean "no constraint".
type RecordFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Status *models.AttendanceStatus
	Limit  int
	Offset int
}

// Repository is the persistence contract for attendance records. Backends
// live in the store package: an in-memory map for tests, MySQL, buntdb and
// MongoDB for real deployments. Soft-deleted records are invisible to every
// query.
type Repository interface {
	// Save inserts or replaces the full record, breaks included.
	Save(ctx context.Context, record *models.AttendanceRecord) error
	// FindByID returns ErrNotFound for unknown or tombstoned ids.
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	// Find returns matching records ordered by clock-in descending, plus the
	// total match count before pagination.
	Find(ctx context.Context, filter RecordFilter) ([]models.AttendanceRecord, int64, error)
	// FindActive returns the user's single active record, or nil when the
	// user is not clocked in.
	FindActive(ctx context.Context, userID string) (*models.AttendanceRecord, error)
	// Delete tombstones a record; it never physically removes rows.
	Delete(ctx context.Context, id string, at time.Time) error
}
