package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shortsintel/shorts-intel-hub/models"
	"gorm.io/gorm"
)

// RefreshScheduleRepositoryImpl implements RefreshScheduleRepository
type RefreshScheduleRepositoryImpl struct {
	*BaseRepository[models.RefreshSchedule, models.RefreshScheduleFilter]
}

// NewRefreshScheduleRepository creates a new repository for refresh schedules
func NewRefreshScheduleRepository(db *gorm.DB) RefreshScheduleRepository {
	return &RefreshScheduleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RefreshSchedule, models.RefreshScheduleFilter](db),
	}
}

// ByMarket retrieves the schedule row for a market, or nil if none exists.
func (r *RefreshScheduleRepositoryImpl) ByMarket(ctx context.Context, market models.Market) (*models.RefreshSchedule, error) {
	db := r.getDB(ctx)

	var schedule models.RefreshSchedule
	err := db.Where("market = ?", market).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &schedule, nil
}

// Update saves all fields of an existing schedule.
func (r *RefreshScheduleRepositoryImpl) Update(ctx context.Context, schedule *models.RefreshSchedule) error {
	db := r.getDB(ctx)
	return db.Save(schedule).Error
}

// RecordRun stores the outcome of one refresh run on the market's schedule row.
func (r *RefreshScheduleRepositoryImpl) RecordRun(ctx context.Context, market models.Market, status string, topicsProcessed int, nextRunAt *time.Time) error {
	db := r.getDB(ctx)

	now := time.Now().UTC()
	res := db.Model(&models.RefreshSchedule{}).
		Where("market = ?", market).
		Updates(map[string]any{
			"last_run_at":               now,
			"last_run_status":           status,
			"last_run_topics_processed": topicsProcessed,
			"next_run_at":               nextRunAt,
			"updated_at":                now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *RefreshScheduleRepositoryImpl) applyFilter(db *gorm.DB, filter models.RefreshScheduleFilter) *gorm.DB {
	if filter.Market != nil {
		db = db.Where("market = ?", *filter.Market)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves refresh schedules based on filter criteria.
func (r *RefreshScheduleRepositoryImpl) ByFilter(ctx context.Context, filter models.RefreshScheduleFilter, orderBy string, limit, offset int) ([]*models.RefreshSchedule, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.RefreshSchedule{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "market"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.RefreshSchedule
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of schedules matching the filter.
func (r *RefreshScheduleRepositoryImpl) Count(ctx context.Context, filter models.RefreshScheduleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.RefreshSchedule{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any schedule matching the filter exists.
func (r *RefreshScheduleRepositoryImpl) Exists(ctx context.Context, filter models.RefreshScheduleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
