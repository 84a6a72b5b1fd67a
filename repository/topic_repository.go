package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shortsintel/shorts-intel-hub/models"
	"gorm.io/gorm"
)

// TopicRepositoryImpl implements TopicRepository
type TopicRepositoryImpl struct {
	*BaseRepository[models.Topic, models.TopicFilter]
}

// NewTopicRepository creates a new repository for topics
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &TopicRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Topic, models.TopicFilter](db),
	}
}

// ByUUID retrieves a non-deleted topic by its UUID.
func (r *TopicRepositoryImpl) ByUUID(ctx context.Context, topicUUID string) (*models.Topic, error) {
	db := r.getDB(ctx)

	var topic models.Topic
	err := db.Where("uuid = ? AND is_deleted = ?", topicUUID, false).First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &topic, nil
}

// ListRankable returns all active, non-deleted topics of a segment, ordered by
// ID ascending so the recalculation pass sees a stable input order.
func (r *TopicRepositoryImpl) ListRankable(ctx context.Context, segment models.Segment) ([]*models.Topic, error) {
	db := r.getDB(ctx)

	var topics []*models.Topic
	err := db.Where("market = ? AND target_gender = ? AND target_age_band = ? AND status = ? AND is_deleted = ?",
		segment.Market, segment.Gender, segment.AgeBand, models.TopicStatusActive, false).
		Order("id ASC").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}

	return topics, nil
}

// TopBySegment returns the top-ranked active topics of a segment by position.
func (r *TopicRepositoryImpl) TopBySegment(ctx context.Context, segment models.Segment, limit int) ([]*models.Topic, error) {
	db := r.getDB(ctx)

	var topics []*models.Topic
	err := db.Where("market = ? AND target_gender = ? AND target_age_band = ? AND status = ? AND is_deleted = ? AND rank_position IS NOT NULL",
		segment.Market, segment.Gender, segment.AgeBand, models.TopicStatusActive, false).
		Order("rank_position ASC").
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		return nil, err
	}

	return topics, nil
}

// UpdateRank persists the derived score and position of one topic.
func (r *TopicRepositoryImpl) UpdateRank(ctx context.Context, topicID uint, score float64, position int, updatedAt time.Time) error {
	db := r.getDB(ctx)

	res := db.Model(&models.Topic{}).
		Where("id = ?", topicID).
		Updates(map[string]any{
			"rank_score":    score,
			"rank_position": position,
			"updated_at":    updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Update saves all fields of an existing topic.
func (r *TopicRepositoryImpl) Update(ctx context.Context, topic *models.Topic) error {
	db := r.getDB(ctx)
	return db.Save(topic).Error
}

// ListExpiredCandidates returns active topics that are past their expiry or
// show negative velocity, optionally restricted to one market.
func (r *TopicRepositoryImpl) ListExpiredCandidates(ctx context.Context, market *models.Market, now time.Time) ([]*models.Topic, error) {
	db := r.getDB(ctx)

	query := db.Where("status = ? AND is_deleted = ?", models.TopicStatusActive, false).
		Where("(expires_at < ?) OR (velocity IS NOT NULL AND velocity < 0)", now)
	if market != nil {
		query = query.Where("market = ?", *market)
	}

	var topics []*models.Topic
	if err := query.Order("id ASC").Find(&topics).Error; err != nil {
		return nil, err
	}

	return topics, nil
}

// ArchiveByIDs moves the given topics to archived status.
func (r *TopicRepositoryImpl) ArchiveByIDs(ctx context.Context, ids []uint, archivedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.getDB(ctx)

	res := db.Model(&models.Topic{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Updates(map[string]any{
			"status":      models.TopicStatusArchived,
			"archived_at": archivedAt,
			"updated_at":  archivedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// ListRetentionCandidates returns archived or expired topics created before
// the given cutoff that have not been soft-deleted yet.
func (r *TopicRepositoryImpl) ListRetentionCandidates(ctx context.Context, olderThan time.Time) ([]*models.Topic, error) {
	db := r.getDB(ctx)

	var topics []*models.Topic
	err := db.Where("created_at < ? AND is_deleted = ? AND status IN ?",
		olderThan, false, []models.TopicStatus{models.TopicStatusArchived, models.TopicStatusExpired}).
		Order("id ASC").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}

	return topics, nil
}

// SoftDeleteByIDs flags the given topics as deleted.
func (r *TopicRepositoryImpl) SoftDeleteByIDs(ctx context.Context, ids []uint, deletedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.getDB(ctx)

	res := db.Model(&models.Topic{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": deletedAt,
			"updated_at": deletedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// StatsByMarket aggregates topic counts and average active score per market.
func (r *TopicRepositoryImpl) StatsByMarket(ctx context.Context, market *models.Market) ([]*models.MarketStats, error) {
	db := r.getDB(ctx)

	query := `
		SELECT
			market,
			COUNT(*) AS total_topics,
			COUNT(*) FILTER (WHERE status = 'active') AS active_topics,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved_topics,
			COUNT(*) FILTER (WHERE status = 'expired') AS expired_topics,
			COUNT(*) FILTER (WHERE status = 'archived') AS archived_topics,
			AVG(rank_score) FILTER (WHERE status = 'active') AS avg_rank_score
		FROM topics
		WHERE is_deleted = FALSE`

	var rows []*models.MarketStats
	var err error
	if market != nil {
		err = db.Raw(query+" AND market = ? GROUP BY market ORDER BY market", *market).Scan(&rows).Error
	} else {
		err = db.Raw(query + " GROUP BY market ORDER BY market").Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *TopicRepositoryImpl) applyFilter(db *gorm.DB, filter models.TopicFilter) *gorm.DB {
	if filter.Market != nil {
		db = db.Where("market = ?", *filter.Market)
	}
	if filter.TargetGender != nil {
		db = db.Where("target_gender = ?", *filter.TargetGender)
	}
	if filter.TargetAgeBand != nil {
		db = db.Where("target_age_band = ?", *filter.TargetAgeBand)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Source != nil {
		db = db.Where("source = ?", *filter.Source)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		db = db.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if filter.IsDeleted != nil {
		db = db.Where("is_deleted = ?", *filter.IsDeleted)
	} else {
		db = db.Where("is_deleted = ?", false)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves topics based on filter criteria.
func (r *TopicRepositoryImpl) ByFilter(ctx context.Context, filter models.TopicFilter, orderBy string, limit, offset int) ([]*models.Topic, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Topic{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "rank_score DESC NULLS LAST"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Topic
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of topics matching the filter.
func (r *TopicRepositoryImpl) Count(ctx context.Context, filter models.TopicFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Topic{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any topic matching the filter exists.
func (r *TopicRepositoryImpl) Exists(ctx context.Context, filter models.TopicFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
