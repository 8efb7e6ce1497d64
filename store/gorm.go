package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
)

// Gorm is the MySQL repository. Breaks travel with the record as a JSON
// column, so one row is the whole workday session.
type Gorm struct {
	db *gorm.DB
}

// NewGorm opens the pool and migrates the attendance table. dsn must include
// parseTime=true.
func NewGorm(dsn string, maxConnections int) (*Gorm, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxConnections)
	sqlDB.SetMaxIdleConns(maxConnections)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	if err := db.AutoMigrate(&models.AttendanceRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Gorm{db: db}, nil
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *Gorm) Save(ctx context.Context, record *models.AttendanceRecord) error {
	return g.db.WithContext(ctx).Save(record).Error
}

func (g *Gorm) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := g.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *Gorm) Find(ctx context.Context, filter core.RecordFilter) ([]models.AttendanceRecord, int64, error) {
	query := g.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("deleted_at IS NULL")

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("clock_in >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("clock_in <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("clock_in DESC")
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []models.AttendanceRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (g *Gorm) FindActive(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, models.StatusActive).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *Gorm) Delete(ctx context.Context, id string, at time.Time) error {
	result := g.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	return nil
}
