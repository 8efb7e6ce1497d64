// Package store provides the Repository backends: an in-memory map for
// tests, MySQL behind gorm, an embedded buntdb file for the local CLI, and
// MongoDB.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
)

// Memory is a mutex-guarded map repository. Records are deep-copied on the
// way in and out so callers never alias stored state.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*models.AttendanceRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]*models.AttendanceRecord)}
}

func (m *Memory) Save(_ context.Context, record *models.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record.Clone()
	return nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*models.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok || record.DeletedAt != nil {
		return nil, fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	return record.Clone(), nil
}

func (m *Memory) Find(_ context.Context, filter core.RecordFilter) ([]models.AttendanceRecord, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.AttendanceRecord
	for _, record := range m.records {
		if matches(record, filter) {
			matched = append(matched, *record.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ClockIn.After(matched[j].ClockIn)
	})
	total := int64(len(matched))
	return paginate(matched, filter), total, nil
}

func (m *Memory) FindActive(_ context.Context, userID string) (*models.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.DeletedAt == nil && record.UserID == userID && record.Status == models.StatusActive {
			return record.Clone(), nil
		}
	}
	return nil, nil
}

func (m *Memory) Delete(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok || record.DeletedAt != nil {
		return fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	record.DeletedAt = &at
	return nil
}

func matches(record *models.AttendanceRecord, filter core.RecordFilter) bool {
	if record.DeletedAt != nil {
		return false
	}
	if filter.UserID != "" && record.UserID != filter.UserID {
		return false
	}
	if filter.Status != nil && record.Status != *filter.Status {
		return false
	}
	if filter.From != nil && record.ClockIn.Before(*filter.From) {
		return false
	}
	if filter.To != nil && record.ClockIn.After(*filter.To) {
		return false
	}
	return true
}

func paginate(records []models.AttendanceRecord, filter core.RecordFilter) []models.AttendanceRecord {
	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			return nil
		}
		records = records[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	return records
}
