package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"gorm.io/gorm"
)

// RankingFlow defines the ranking config store and recalculation engine.
type RankingFlow interface {
	ListRankingConfigs(ctx context.Context, req *dto.ListRankingConfigsRequest) (*dto.ListRankingConfigsResponse, error)
	UpdateRankingConfig(ctx context.Context, req *dto.UpdateRankingConfigRequest, metadata *ClientMetadata) (*dto.UpdateRankingConfigResponse, error)
	RecalculateSegment(ctx context.Context, segment models.Segment, triggeredBy string) (*dto.SegmentRecalculationResult, error)
	RecalculateAll(ctx context.Context, triggeredBy string) (*dto.RecalculateResponse, error)
}

// RankingFlowImpl implements the ranking business flow
type RankingFlowImpl struct {
	configRepo repository.RankingConfigRepository
	topicRepo  repository.TopicRepository
	auditRepo  repository.AuditLogRepository
	db         *gorm.DB
	rc         *redis.Client
}

// NewRankingFlow creates a new ranking flow instance
func NewRankingFlow(
	configRepo repository.RankingConfigRepository,
	topicRepo repository.TopicRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
	rc *redis.Client,
) RankingFlow {
	return &RankingFlowImpl{
		configRepo: configRepo,
		topicRepo:  topicRepo,
		auditRepo:  auditRepo,
		db:         db,
		rc:         rc,
	}
}

// ListRankingConfigs returns active configs matching a partial segment key.
func (s *RankingFlowImpl) ListRankingConfigs(ctx context.Context, req *dto.ListRankingConfigsRequest) (*dto.ListRankingConfigsResponse, error) {
	filter := models.RankingConfigFilter{IsActive: utils.ToPtr(true)}
	if req.Market != "" {
		filter.Market = utils.ToPtr(models.Market(req.Market))
	}
	if req.Gender != "" {
		filter.TargetGender = utils.ToPtr(models.Gender(req.Gender))
	}
	if req.Age != "" {
		filter.TargetAgeBand = utils.ToPtr(models.AgeBand(req.Age))
	}

	rows, err := s.configRepo.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("RANKING_CONFIG_LIST_FAILED", "Failed to list ranking configs", err)
	}

	items := make([]dto.RankingConfigItem, 0, len(rows))
	for _, c := range rows {
		items = append(items, mapRankingConfig(c))
	}

	return &dto.ListRankingConfigsResponse{
		Message: "Ranking configs retrieved successfully",
		Configs: items,
	}, nil
}

// UpdateRankingConfig replaces the active weight set of one segment.
// The previous active config is deactivated, the new one inserted, and the
// audit entry written, all inside one transaction; the at-most-one-active
// invariant is never observable as violated.
func (s *RankingFlowImpl) UpdateRankingConfig(ctx context.Context, req *dto.UpdateRankingConfigRequest, metadata *ClientMetadata) (*dto.UpdateRankingConfigResponse, error) {
	segment, err := parseSegment(req.Market, req.Gender, req.Age)
	if err != nil {
		return nil, NewBusinessError("SEGMENT_INVALID", "Invalid segment key", err)
	}
	if req.UpdatedBy == "" {
		return nil, NewBusinessError("UPDATED_BY_REQUIRED", "UpdatedBy is required", ErrUpdatedByRequired)
	}

	weights := models.RankingWeights{
		Velocity:     req.VelocityWeight,
		CreationRate: req.CreationRateWeight,
		Watchtime:    req.WatchtimeWeight,
	}
	if err := validateWeights(weights); err != nil {
		return nil, NewBusinessError("WEIGHTS_INVALID", "Weight validation failed", err)
	}

	var config *models.RankingConfig

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		deactivated, err := s.configRepo.DeactivateBySegment(txCtx, segment)
		if err != nil {
			return err
		}

		config = &models.RankingConfig{
			Market:             segment.Market,
			TargetGender:       segment.Gender,
			TargetAgeBand:      segment.AgeBand,
			VelocityWeight:     weights.Velocity,
			CreationRateWeight: weights.CreationRate,
			WatchtimeWeight:    weights.Watchtime,
			IsActive:           true,
			CreatedBy:          req.UpdatedBy,
			Notes:              req.Notes,
			CreatedAt:          utils.UTCNow(),
		}
		if err := s.configRepo.Save(txCtx, config); err != nil {
			return err
		}

		oldWeights := "none"
		if deactivated > 0 {
			oldWeights = "deactivated"
		}
		details := map[string]any{
			"market":      segment.Market,
			"demo":        segment.DemoLabel(),
			"old_weights": oldWeights,
			"new_weights": weights,
		}
		if metadata != nil {
			details["client"] = metadata
		}
		resourceID := fmt.Sprintf("%d", config.ID)
		return writeAudit(txCtx, s.auditRepo, req.UpdatedBy, models.AuditActionRankingConfigUpdated,
			models.AuditResourceRankingConfig, &resourceID, details, &segment.Market, nil)
	})
	if err != nil {
		return nil, NewBusinessError("RANKING_CONFIG_UPDATE_FAILED", "Failed to update ranking config", err)
	}

	return &dto.UpdateRankingConfigResponse{
		Message: "Ranking config updated successfully",
		Config:  mapRankingConfig(config),
	}, nil
}

// RecalculateSegment recomputes scores and positions for every rankable topic
// of one segment. The whole read-score-sort-write cycle runs in a single
// transaction; the row lock on the active config serializes concurrent passes
// over the same segment.
func (s *RankingFlowImpl) RecalculateSegment(ctx context.Context, segment models.Segment, triggeredBy string) (*dto.SegmentRecalculationResult, error) {
	if err := segment.Validate(); err != nil {
		return nil, NewBusinessError("SEGMENT_INVALID", "Invalid segment key", fmt.Errorf("%w: %v", ErrInvalidSegment, err))
	}

	start := time.Now()

	var weights models.RankingWeights
	var updated int

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		config, err := s.configRepo.ActiveBySegmentForUpdate(txCtx, segment)
		if err != nil {
			return err
		}
		if config == nil {
			return ErrRankingConfigNotFound
		}
		weights = config.Weights()

		topics, err := s.topicRepo.ListRankable(txCtx, segment)
		if err != nil {
			return err
		}

		now := utils.UTCNow()
		ranks := RankTopics(topics, weights)
		for _, r := range ranks {
			if err := s.topicRepo.UpdateRank(txCtx, r.TopicID, r.Score, r.Position, now); err != nil {
				return err
			}
		}
		updated = len(ranks)

		details := map[string]any{
			"market":         segment.Market,
			"demo":           segment.DemoLabel(),
			"topics_updated": updated,
			"weights":        weights,
		}
		return writeAudit(txCtx, s.auditRepo, triggeredBy, models.AuditActionRankingsRecalculated,
			models.AuditResourceRankingConfig, nil, details, &segment.Market, nil)
	})

	recalculationDuration.WithLabelValues(string(segment.Market)).Observe(time.Since(start).Seconds())
	if err != nil {
		recalculationsTotal.WithLabelValues(string(segment.Market), "error").Inc()
		if IsRankingConfigNotFound(err) {
			return nil, NewBusinessError("RANKING_CONFIG_MISSING", "No active ranking config for segment", err)
		}
		return nil, NewBusinessError("RECALCULATION_FAILED", "Segment recalculation failed", err)
	}

	recalculationsTotal.WithLabelValues(string(segment.Market), "success").Inc()
	topicsRankedTotal.WithLabelValues(string(segment.Market)).Add(float64(updated))

	invalidateTop10(ctx, s.rc, segment)

	return &dto.SegmentRecalculationResult{
		Market:        string(segment.Market),
		Demographic:   segment.DemoLabel(),
		TopicsUpdated: updated,
		Weights: &dto.RankingWeightsDTO{
			Velocity:     weights.Velocity,
			CreationRate: weights.CreationRate,
			Watchtime:    weights.Watchtime,
		},
	}, nil
}

// RecalculateAll recalculates every segment independently. Per-segment
// failures are captured in the report and never abort the remaining segments;
// cancellation skips segments that have not started yet.
func (s *RankingFlowImpl) RecalculateAll(ctx context.Context, triggeredBy string) (*dto.RecalculateResponse, error) {
	segments := models.AllSegments()
	results := make([]dto.SegmentRecalculationResult, 0, len(segments))

	failed := 0
	skipped := 0
	for _, segment := range segments {
		if ctx.Err() != nil {
			results = append(results, dto.SegmentRecalculationResult{
				Market:      string(segment.Market),
				Demographic: segment.DemoLabel(),
				Skipped:     true,
			})
			skipped++
			continue
		}

		res, err := s.RecalculateSegment(ctx, segment, triggeredBy)
		if err != nil {
			failed++
			results = append(results, dto.SegmentRecalculationResult{
				Market:      string(segment.Market),
				Demographic: segment.DemoLabel(),
				Error:       utils.ToPtr(err.Error()),
			})
			continue
		}
		results = append(results, *res)
	}

	return &dto.RecalculateResponse{
		Message: "Recalculation completed",
		Results: results,
		Total:   len(segments),
		Failed:  failed,
		Skipped: skipped,
	}, nil
}

// validateWeights enforces the per-weight range and the normalized sum.
func validateWeights(w models.RankingWeights) error {
	for _, v := range []float64{w.Velocity, w.CreationRate, w.Watchtime} {
		if v < 0 || v > 1 {
			return ErrWeightOutOfRange
		}
	}
	if !w.IsNormalized() {
		return fmt.Errorf("%w (got %.4f)", ErrWeightsSumInvalid, w.Sum())
	}
	return nil
}

func mapRankingConfig(c *models.RankingConfig) dto.RankingConfigItem {
	return dto.RankingConfigItem{
		ID:         c.ID,
		Market:     string(c.Market),
		Gender:     string(c.TargetGender),
		Age:        string(c.TargetAgeBand),
		TargetDemo: c.Segment().DemoLabel(),
		Weights: dto.RankingWeightsDTO{
			Velocity:     c.VelocityWeight,
			CreationRate: c.CreationRateWeight,
			Watchtime:    c.WatchtimeWeight,
		},
		IsActive:  c.IsActive,
		CreatedBy: c.CreatedBy,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
