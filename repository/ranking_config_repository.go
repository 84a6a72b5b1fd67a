package repository

import (
	"context"
	"errors"

	"github.com/shortsintel/shorts-intel-hub/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankingConfigRepositoryImpl implements RankingConfigRepository
type RankingConfigRepositoryImpl struct {
	*BaseRepository[models.RankingConfig, models.RankingConfigFilter]
}

// NewRankingConfigRepository creates a new repository for ranking configs
func NewRankingConfigRepository(db *gorm.DB) RankingConfigRepository {
	return &RankingConfigRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RankingConfig, models.RankingConfigFilter](db),
	}
}

// ActiveBySegment returns the single active config for a segment, or nil if none exists.
func (r *RankingConfigRepositoryImpl) ActiveBySegment(ctx context.Context, segment models.Segment) (*models.RankingConfig, error) {
	db := r.getDB(ctx)

	var config models.RankingConfig
	err := db.Where("market = ? AND target_gender = ? AND target_age_band = ? AND is_active = ?",
		segment.Market, segment.Gender, segment.AgeBand, true).
		First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &config, nil
}

// ActiveBySegmentForUpdate locks and returns the active config row for the segment.
// Must run inside a transaction; the row lock is what serializes two
// recalculation passes over the same segment.
func (r *RankingConfigRepositoryImpl) ActiveBySegmentForUpdate(ctx context.Context, segment models.Segment) (*models.RankingConfig, error) {
	db := r.getDB(ctx)

	var config models.RankingConfig
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market = ? AND target_gender = ? AND target_age_band = ? AND is_active = ?",
			segment.Market, segment.Gender, segment.AgeBand, true).
		First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &config, nil
}

// DeactivateBySegment marks the current active config of the segment inactive.
// Returns the number of rows deactivated (0 or 1 when the partial unique
// index holds).
func (r *RankingConfigRepositoryImpl) DeactivateBySegment(ctx context.Context, segment models.Segment) (int64, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.RankingConfig{}).
		Where("market = ? AND target_gender = ? AND target_age_band = ? AND is_active = ?",
			segment.Market, segment.Gender, segment.AgeBand, true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *RankingConfigRepositoryImpl) applyFilter(db *gorm.DB, filter models.RankingConfigFilter) *gorm.DB {
	if filter.Market != nil {
		db = db.Where("market = ?", *filter.Market)
	}
	if filter.TargetGender != nil {
		db = db.Where("target_gender = ?", *filter.TargetGender)
	}
	if filter.TargetAgeBand != nil {
		db = db.Where("target_age_band = ?", *filter.TargetAgeBand)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedBy != nil {
		db = db.Where("created_by = ?", *filter.CreatedBy)
	}
	return db
}

// ByFilter retrieves ranking configs based on filter criteria.
func (r *RankingConfigRepositoryImpl) ByFilter(ctx context.Context, filter models.RankingConfigFilter, orderBy string, limit, offset int) ([]*models.RankingConfig, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.RankingConfig{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "market, target_gender, target_age_band"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.RankingConfig
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of ranking configs matching the filter.
func (r *RankingConfigRepositoryImpl) Count(ctx context.Context, filter models.RankingConfigFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.RankingConfig{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any ranking config matching the filter exists.
func (r *RankingConfigRepositoryImpl) Exists(ctx context.Context, filter models.RankingConfigFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
