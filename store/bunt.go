package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/buntdb"

	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
)

const recordKeyPrefix = "record:"

// Bunt is the embedded key-value repository backing the local CLI. Records
// are stored as JSON under record:<id>; queries scan the keyspace, which is
// fine for a single user's history.
type Bunt struct {
	db *buntdb.DB
}

// NewBunt opens (or creates) the database at path. Use ":memory:" for an
// ephemeral store.
func NewBunt(path string) (*Bunt, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}
	return &Bunt{db: db}, nil
}

func (b *Bunt) Close() error {
	return b.db.Close()
}

func (b *Bunt) Save(_ context.Context, record *models.AttendanceRecord) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		bs, err := json.Marshal(record)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(recordKeyPrefix+record.ID, string(bs), nil)
		return err
	})
}

func (b *Bunt) FindByID(_ context.Context, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := b.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(recordKeyPrefix + id)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(v), &record)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if record.DeletedAt != nil {
		return nil, fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	return &record, nil
}

func (b *Bunt) scan(fn func(record *models.AttendanceRecord) bool) error {
	return b.db.View(func(tx *buntdb.Tx) error {
		var inner error
		err := tx.Ascend("", func(key, value string) bool {
			if !strings.HasPrefix(key, recordKeyPrefix) {
				return true
			}
			var record models.AttendanceRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				inner = err
				return false
			}
			return fn(&record)
		})
		if inner != nil {
			return inner
		}
		return err
	})
}

func (b *Bunt) Find(_ context.Context, filter core.RecordFilter) ([]models.AttendanceRecord, int64, error) {
	var matched []models.AttendanceRecord
	err := b.scan(func(record *models.AttendanceRecord) bool {
		if matches(record, filter) {
			matched = append(matched, *record)
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ClockIn.After(matched[j].ClockIn)
	})
	total := int64(len(matched))
	return paginate(matched, filter), total, nil
}

func (b *Bunt) FindActive(_ context.Context, userID string) (*models.AttendanceRecord, error) {
	var active *models.AttendanceRecord
	err := b.scan(func(record *models.AttendanceRecord) bool {
		if record.DeletedAt == nil && record.UserID == userID && record.Status == models.StatusActive {
			active = record
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

func (b *Bunt) Delete(ctx context.Context, id string, at time.Time) error {
	record, err := b.FindByID(ctx, id)
	if err != nil {
		return err
	}
	record.DeletedAt = &at
	return b.Save(ctx, record)
}
