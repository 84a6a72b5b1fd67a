// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/shortsintel/shorts-intel-hub/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// RankingConfigRepository defines operations for versioned segment weight sets
type RankingConfigRepository interface {
	Repository[models.RankingConfig, models.RankingConfigFilter]
	ActiveBySegment(ctx context.Context, segment models.Segment) (*models.RankingConfig, error)
	// ActiveBySegmentForUpdate locks the active config row for the duration of
	// the surrounding transaction, serializing concurrent recalculation passes
	// over the same segment.
	ActiveBySegmentForUpdate(ctx context.Context, segment models.Segment) (*models.RankingConfig, error)
	DeactivateBySegment(ctx context.Context, segment models.Segment) (int64, error)
}

// TopicRepository defines operations for topics
type TopicRepository interface {
	Repository[models.Topic, models.TopicFilter]
	ByUUID(ctx context.Context, topicUUID string) (*models.Topic, error)
	ListRankable(ctx context.Context, segment models.Segment) ([]*models.Topic, error)
	TopBySegment(ctx context.Context, segment models.Segment, limit int) ([]*models.Topic, error)
	UpdateRank(ctx context.Context, topicID uint, score float64, position int, updatedAt time.Time) error
	Update(ctx context.Context, topic *models.Topic) error
	ListExpiredCandidates(ctx context.Context, market *models.Market, now time.Time) ([]*models.Topic, error)
	ArchiveByIDs(ctx context.Context, ids []uint, archivedAt time.Time) (int64, error)
	ListRetentionCandidates(ctx context.Context, olderThan time.Time) ([]*models.Topic, error)
	SoftDeleteByIDs(ctx context.Context, ids []uint, deletedAt time.Time) (int64, error)
	StatsByMarket(ctx context.Context, market *models.Market) ([]*models.MarketStats, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
}

// RefreshScheduleRepository defines operations for per-market refresh schedules
type RefreshScheduleRepository interface {
	Repository[models.RefreshSchedule, models.RefreshScheduleFilter]
	ByMarket(ctx context.Context, market models.Market) (*models.RefreshSchedule, error)
	Update(ctx context.Context, schedule *models.RefreshSchedule) error
	RecordRun(ctx context.Context, market models.Market, status string, topicsProcessed int, nextRunAt *time.Time) error
}

// FileUploadRepository defines operations for upload tracking records
type FileUploadRepository interface {
	Repository[models.FileUpload, models.FileUploadFilter]
	ByUUID(ctx context.Context, uploadUUID string) (*models.FileUpload, error)
	Update(ctx context.Context, upload *models.FileUpload) error
}
