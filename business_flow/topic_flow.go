package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	"github.com/shortsintel/shorts-intel-hub/app/services"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// TopicFlow defines topic listing, the per-segment shortlist, approval with
// the downstream push, and the archival and retention policies.
type TopicFlow interface {
	ListTopics(ctx context.Context, req *dto.ListTopicsRequest) (*dto.ListTopicsResponse, error)
	GetTopic(ctx context.Context, topicUUID string) (*dto.GetTopicResponse, error)
	TopTopics(ctx context.Context, req *dto.TopTopicsRequest) (*dto.TopTopicsResponse, error)
	ExportShortlists(ctx context.Context, market *models.Market) (string, []byte, error)
	ApproveTopic(ctx context.Context, req *dto.ApproveTopicRequest, metadata *ClientMetadata) (*dto.ApproveTopicResponse, error)
	DeleteTopic(ctx context.Context, req *dto.DeleteTopicRequest, metadata *ClientMetadata) (*dto.DeleteTopicResponse, error)
	ArchiveExpired(ctx context.Context, market *models.Market, actor string) (*dto.ArchiveExpiredResponse, error)
	RetentionSweep(ctx context.Context, actor string) (int64, error)
	Stats(ctx context.Context, market *models.Market) (*dto.StatsResponse, error)
}

// TopicFlowImpl implements the topic business flow
type TopicFlowImpl struct {
	topicRepo repository.TopicRepository
	auditRepo repository.AuditLogRepository
	bridge    services.CollectiveBridge
	db        *gorm.DB
	rc        *redis.Client
}

// NewTopicFlow creates a new topic flow instance
func NewTopicFlow(
	topicRepo repository.TopicRepository,
	auditRepo repository.AuditLogRepository,
	bridge services.CollectiveBridge,
	db *gorm.DB,
	rc *redis.Client,
) TopicFlow {
	return &TopicFlowImpl{
		topicRepo: topicRepo,
		auditRepo: auditRepo,
		bridge:    bridge,
		db:        db,
		rc:        rc,
	}
}

// ListTopics pages through topics matching the filter.
func (s *TopicFlowImpl) ListTopics(ctx context.Context, req *dto.ListTopicsRequest) (*dto.ListTopicsResponse, error) {
	filter := models.TopicFilter{}
	if req.Market != "" {
		filter.Market = utils.ToPtr(models.Market(req.Market))
	}
	if req.Gender != "" {
		filter.TargetGender = utils.ToPtr(models.Gender(req.Gender))
	}
	if req.Age != "" {
		filter.TargetAgeBand = utils.ToPtr(models.AgeBand(req.Age))
	}
	if req.Status != "" {
		filter.Status = utils.ToPtr(models.TopicStatus(req.Status))
	}
	if req.Search != "" {
		filter.Search = utils.ToPtr(req.Search)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = utils.DefaultPageLimit
	}
	if limit > utils.MaxPageLimit {
		limit = utils.MaxPageLimit
	}
	offset := req.Offset
	if offset < 0 {
		return nil, NewBusinessError("PAGE_INVALID", "Invalid pagination", ErrInvalidPage)
	}

	orderBy, err := topicOrderBy(req.Sort, req.Order)
	if err != nil {
		return nil, NewBusinessError("SORT_INVALID", "Invalid sort field", err)
	}

	topics, err := s.topicRepo.ByFilter(ctx, filter, orderBy, limit, offset)
	if err != nil {
		return nil, NewBusinessError("TOPIC_LIST_FAILED", "Failed to list topics", err)
	}
	total, err := s.topicRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("TOPIC_COUNT_FAILED", "Failed to count topics", err)
	}

	items := make([]dto.TopicItem, 0, len(topics))
	for _, t := range topics {
		items = append(items, mapTopicItem(t))
	}

	return &dto.ListTopicsResponse{
		Message: "Topics retrieved successfully",
		Topics:  items,
		Pagination: dto.Pagination{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	}, nil
}

// GetTopic returns one topic by UUID.
func (s *TopicFlowImpl) GetTopic(ctx context.Context, topicUUID string) (*dto.GetTopicResponse, error) {
	topic, err := s.lookupTopic(ctx, topicUUID)
	if err != nil {
		return nil, err
	}
	return &dto.GetTopicResponse{
		Message: "Topic retrieved successfully",
		Topic:   mapTopicItem(topic),
	}, nil
}

// TopTopics returns the ranked shortlist of one segment, served from cache
// when a recalculation pass has not invalidated it.
func (s *TopicFlowImpl) TopTopics(ctx context.Context, req *dto.TopTopicsRequest) (*dto.TopTopicsResponse, error) {
	segment, err := parseSegment(req.Market, req.Gender, req.Age)
	if err != nil {
		return nil, NewBusinessError("SEGMENT_INVALID", "Invalid segment key", err)
	}

	if items, ok := readTop10Cache(ctx, s.rc, segment); ok {
		return &dto.TopTopicsResponse{
			Message:     "Top topics retrieved successfully",
			Market:      string(segment.Market),
			Demographic: segment.DemoLabel(),
			Topics:      items,
		}, nil
	}

	topics, err := s.topicRepo.TopBySegment(ctx, segment, utils.ShortlistSize)
	if err != nil {
		return nil, NewBusinessError("TOP_TOPICS_FAILED", "Failed to load top topics", err)
	}

	items := make([]dto.TopicItem, 0, len(topics))
	for _, t := range topics {
		items = append(items, mapTopicItem(t))
	}
	writeTop10Cache(ctx, s.rc, segment, items)

	return &dto.TopTopicsResponse{
		Message:     "Top topics retrieved successfully",
		Market:      string(segment.Market),
		Demographic: segment.DemoLabel(),
		Topics:      items,
	}, nil
}

// ExportShortlists renders the ranked shortlists as an xlsx workbook with one
// sheet per market, each sheet covering the market's six segments. With a
// market it exports that market only.
func (s *TopicFlowImpl) ExportShortlists(ctx context.Context, market *models.Market) (string, []byte, error) {
	markets := models.AllMarkets()
	if market != nil {
		markets = []models.Market{*market}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headers := []string{"Demographic", "Rank", "Topic", "Score", "Velocity", "Creation Rate", "Watchtime", "Hashtags", "Source"}

	for i, m := range markets {
		sheet := string(m)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return "", nil, NewBusinessError("SHORTLIST_EXPORT_FAILED", "Failed to build workbook", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return "", nil, NewBusinessError("SHORTLIST_EXPORT_FAILED", "Failed to build workbook", err)
		}

		for col, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return "", nil, NewBusinessError("SHORTLIST_EXPORT_FAILED", "Failed to build workbook", err)
			}
		}

		row := 2
		for _, segment := range models.MarketSegments(m) {
			topics, err := s.topicRepo.TopBySegment(ctx, segment, utils.ShortlistSize)
			if err != nil {
				return "", nil, NewBusinessError("SHORTLIST_EXPORT_FAILED", "Failed to load shortlist", err)
			}
			for _, t := range topics {
				values := []any{
					segment.DemoLabel(),
					derefInt(t.RankPosition),
					t.Name,
					derefFloat(t.RankScore),
					derefFloat(t.Velocity),
					derefFloat(t.CreationRate),
					derefFloat(t.Watchtime),
					strings.Join(t.Hashtags, " "),
					t.Source,
				}
				for col, v := range values {
					cell, _ := excelize.CoordinatesToCellName(col+1, row)
					if err := f.SetCellValue(sheet, cell, v); err != nil {
						return "", nil, NewBusinessError("SHORTLIST_EXPORT_FAILED", "Failed to build workbook", err)
					}
				}
				row++
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("SHORTLIST_EXPORT_FAILED", "Failed to write workbook", err)
	}

	scope := "all"
	if market != nil {
		scope = string(*market)
	}
	filename := fmt.Sprintf("shortlists_%s_%s.xlsx", scope, utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// ApproveTopic marks an active topic approved and pushes it downstream. The
// status change and audit entry commit first; the push runs after commit so a
// downstream outage never rolls back an approval, it only leaves the push
// pending.
func (s *TopicFlowImpl) ApproveTopic(ctx context.Context, req *dto.ApproveTopicRequest, metadata *ClientMetadata) (*dto.ApproveTopicResponse, error) {
	var topic *models.Topic

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		t, err := s.lookupTopic(txCtx, req.UUID)
		if err != nil {
			return err
		}
		if t.Status != models.TopicStatusActive {
			return fmt.Errorf("%w (status %s)", ErrTopicNotActive, t.Status)
		}

		now := utils.UTCNow()
		t.Status = models.TopicStatusApproved
		t.ApprovedBy = utils.ToPtr(req.ApprovedBy)
		t.ApprovedAt = &now
		t.UpdatedAt = &now
		if err := s.topicRepo.Update(txCtx, t); err != nil {
			return err
		}
		topic = t

		details := map[string]any{
			"topic_name": t.Name,
			"market":     t.Market,
			"demo":       t.Segment().DemoLabel(),
		}
		if metadata != nil {
			details["client"] = metadata
		}
		resourceID := t.UUID.String()
		return writeAudit(txCtx, s.auditRepo, req.ApprovedBy, models.AuditActionTopicApproved,
			models.AuditResourceTopic, &resourceID, details, &t.Market, utils.ToPtr(t.Source))
	})
	if err != nil {
		if IsTopicNotFound(err) || IsTopicUUIDInvalid(err) || IsTopicNotActive(err) {
			return nil, err
		}
		return nil, NewBusinessError("TOPIC_APPROVE_FAILED", "Failed to approve topic", err)
	}

	invalidateTop10(ctx, s.rc, topic.Segment())

	sent, pushErr := s.bridge.Push(ctx, topic)
	if sent {
		now := utils.UTCNow()
		topic.SentToCollective = true
		topic.SentAt = &now
		if err := s.topicRepo.Update(ctx, topic); err != nil {
			return nil, NewBusinessError("TOPIC_APPROVE_FAILED", "Failed to record downstream push", err)
		}
	}

	return &dto.ApproveTopicResponse{
		Message:           "Topic approved successfully",
		Topic:             mapTopicItem(topic),
		SentToCollective:  sent,
		CollectivePending: !sent && pushErr == nil,
	}, nil
}

// DeleteTopic soft-deletes one topic.
func (s *TopicFlowImpl) DeleteTopic(ctx context.Context, req *dto.DeleteTopicRequest, metadata *ClientMetadata) (*dto.DeleteTopicResponse, error) {
	var topic *models.Topic

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		t, err := s.lookupTopic(txCtx, req.UUID)
		if err != nil {
			return err
		}
		topic = t

		now := utils.UTCNow()
		if _, err := s.topicRepo.SoftDeleteByIDs(txCtx, []uint{t.ID}, now); err != nil {
			return err
		}

		details := map[string]any{
			"topic_name": t.Name,
			"market":     t.Market,
		}
		if metadata != nil {
			details["client"] = metadata
		}
		resourceID := t.UUID.String()
		return writeAudit(txCtx, s.auditRepo, req.DeletedBy, models.AuditActionTopicDeleted,
			models.AuditResourceTopic, &resourceID, details, &t.Market, utils.ToPtr(t.Source))
	})
	if err != nil {
		if IsTopicNotFound(err) || IsTopicUUIDInvalid(err) {
			return nil, err
		}
		return nil, NewBusinessError("TOPIC_DELETE_FAILED", "Failed to delete topic", err)
	}

	invalidateTop10(ctx, s.rc, topic.Segment())

	return &dto.DeleteTopicResponse{
		Message: "Topic deleted successfully",
		UUID:    req.UUID,
	}, nil
}

// ArchiveExpired moves past-TTL active topics to archived status. With a
// market it archives that market only; with nil it sweeps all markets.
func (s *TopicFlowImpl) ArchiveExpired(ctx context.Context, market *models.Market, actor string) (*dto.ArchiveExpiredResponse, error) {
	now := utils.UTCNow()

	var archived []*models.Topic

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		candidates, err := s.topicRepo.ListExpiredCandidates(txCtx, market, now)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(candidates))
		for _, t := range candidates {
			ids = append(ids, t.ID)
		}
		if _, err := s.topicRepo.ArchiveByIDs(txCtx, ids, now); err != nil {
			return err
		}
		archived = candidates

		details := map[string]any{"topics_archived": len(candidates)}
		return writeAudit(txCtx, s.auditRepo, actor, models.AuditActionTopicsArchived,
			models.AuditResourceTopic, nil, details, market, nil)
	})
	if err != nil {
		return nil, NewBusinessError("ARCHIVE_EXPIRED_FAILED", "Failed to archive expired topics", err)
	}

	uuids := make([]string, 0, len(archived))
	seen := make(map[models.Segment]bool)
	for _, t := range archived {
		uuids = append(uuids, t.UUID.String())
		segment := t.Segment()
		if !seen[segment] {
			seen[segment] = true
			invalidateTop10(ctx, s.rc, segment)
		}
	}

	return &dto.ArchiveExpiredResponse{
		Message:        "Expired topics archived successfully",
		TopicsArchived: len(archived),
		TopicUUIDs:     uuids,
	}, nil
}

// RetentionSweep soft-deletes archived and expired topics older than the
// retention window, and reports the number removed.
func (s *TopicFlowImpl) RetentionSweep(ctx context.Context, actor string) (int64, error) {
	olderThan := utils.UTCNow().Add(-utils.TopicRetentionWindow)

	var swept int64

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		candidates, err := s.topicRepo.ListRetentionCandidates(txCtx, olderThan)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(candidates))
		for _, t := range candidates {
			ids = append(ids, t.ID)
		}
		n, err := s.topicRepo.SoftDeleteByIDs(txCtx, ids, utils.UTCNow())
		if err != nil {
			return err
		}
		swept = n

		details := map[string]any{
			"topics_deleted": n,
			"older_than":     olderThan.Format(time.RFC3339),
		}
		return writeAudit(txCtx, s.auditRepo, actor, models.AuditActionRetentionSweepApplied,
			models.AuditResourceTopic, nil, details, nil, nil)
	})
	if err != nil {
		return 0, NewBusinessError("RETENTION_SWEEP_FAILED", "Failed to apply retention sweep", err)
	}

	return swept, nil
}

// Stats aggregates topic counts per market.
func (s *TopicFlowImpl) Stats(ctx context.Context, market *models.Market) (*dto.StatsResponse, error) {
	stats, err := s.topicRepo.StatsByMarket(ctx, market)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to load market stats", err)
	}

	items := make([]dto.MarketStatsItem, 0, len(stats))
	for _, st := range stats {
		items = append(items, dto.MarketStatsItem{
			Market:         string(st.Market),
			TotalTopics:    st.TotalTopics,
			ActiveTopics:   st.ActiveTopics,
			ApprovedTopics: st.ApprovedTopics,
			ExpiredTopics:  st.ExpiredTopics,
			ArchivedTopics: st.ArchivedTopics,
			AvgRankScore:   st.AvgRankScore,
		})
	}

	return &dto.StatsResponse{
		Message: "Market stats retrieved successfully",
		Stats:   items,
	}, nil
}

// lookupTopic fetches a topic by UUID, mapping parse and not-found failures
// onto business errors.
func (s *TopicFlowImpl) lookupTopic(ctx context.Context, topicUUID string) (*models.Topic, error) {
	if _, err := uuid.Parse(topicUUID); err != nil {
		return nil, NewBusinessError("TOPIC_UUID_INVALID", "Invalid topic UUID", fmt.Errorf("%w: %v", ErrTopicUUIDInvalid, err))
	}
	topic, err := s.topicRepo.ByUUID(ctx, topicUUID)
	if err != nil {
		return nil, NewBusinessError("TOPIC_LOOKUP_FAILED", "Failed to look up topic", err)
	}
	if topic == nil || topic.IsDeleted {
		return nil, NewBusinessError("TOPIC_NOT_FOUND", "Topic not found", ErrTopicNotFound)
	}
	return topic, nil
}

// topicOrderBy builds the ORDER BY clause from the allowlisted sort fields.
func topicOrderBy(sort, order string) (string, error) {
	if sort == "" {
		return "", nil
	}
	if !models.TopicSortFields[sort] {
		return "", fmt.Errorf("%w: %s", ErrInvalidSortField, sort)
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	if sort == "rank_score" {
		return fmt.Sprintf("rank_score %s NULLS LAST", dir), nil
	}
	return fmt.Sprintf("%s %s", sort, dir), nil
}

func mapTopicItem(t *models.Topic) dto.TopicItem {
	return dto.TopicItem{
		UUID:          t.UUID.String(),
		Name:          t.Name,
		Description:   t.Description,
		ReferenceLink: t.ReferenceLink,
		Market:        string(t.Market),
		Gender:        string(t.TargetGender),
		Age:           string(t.TargetAgeBand),
		TargetDemo:    t.Segment().DemoLabel(),
		Source:        t.Source,
		Hashtags:      t.Hashtags,
		Audio:         t.Audio,
		Velocity:      t.Velocity,
		CreationRate:  t.CreationRate,
		Watchtime:     t.Watchtime,
		RankScore:     t.RankScore,
		RankPosition:  t.RankPosition,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     formatTimePtr(t.UpdatedAt),
		ExpiresAt:     formatTimePtr(t.ExpiresAt),
		ApprovedBy:    t.ApprovedBy,
		ApprovedAt:    formatTimePtr(t.ApprovedAt),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return utils.ToPtr(t.Format(time.RFC3339))
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
