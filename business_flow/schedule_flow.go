package businessflow

import (
	"context"

	"github.com/shortsintel/shorts-intel-hub/app/dto"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"gorm.io/gorm"
)

// ScheduleFlow defines read and update operations for per-market refresh
// schedules.
type ScheduleFlow interface {
	ListSchedules(ctx context.Context) (*dto.ListSchedulesResponse, error)
	UpdateSchedule(ctx context.Context, req *dto.UpdateScheduleRequest, metadata *ClientMetadata) (*dto.UpdateScheduleResponse, error)
}

// ScheduleFlowImpl implements the schedule business flow
type ScheduleFlowImpl struct {
	scheduleRepo repository.RefreshScheduleRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewScheduleFlow creates a new schedule flow instance
func NewScheduleFlow(
	scheduleRepo repository.RefreshScheduleRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ScheduleFlow {
	return &ScheduleFlowImpl{
		scheduleRepo: scheduleRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// ListSchedules returns every market's refresh schedule.
func (s *ScheduleFlowImpl) ListSchedules(ctx context.Context) (*dto.ListSchedulesResponse, error) {
	rows, err := s.scheduleRepo.ByFilter(ctx, models.RefreshScheduleFilter{}, "market ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("SCHEDULE_LIST_FAILED", "Failed to list schedules", err)
	}

	items := make([]dto.ScheduleItem, 0, len(rows))
	for _, sc := range rows {
		items = append(items, mapScheduleItem(sc))
	}

	return &dto.ListSchedulesResponse{
		Message:   "Schedules retrieved successfully",
		Schedules: items,
	}, nil
}

// UpdateSchedule changes one market's refresh schedule. Only the fields
// present in the request change; the rest keep their stored value.
func (s *ScheduleFlowImpl) UpdateSchedule(ctx context.Context, req *dto.UpdateScheduleRequest, metadata *ClientMetadata) (*dto.UpdateScheduleResponse, error) {
	market := models.Market(req.Market)
	if req.CronExpression != nil && *req.CronExpression == "" {
		return nil, NewBusinessError("CRON_REQUIRED", "Cron expression must not be empty", ErrCronExpressionRequired)
	}

	var schedule *models.RefreshSchedule

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		sc, err := s.scheduleRepo.ByMarket(txCtx, market)
		if err != nil {
			return err
		}
		if sc == nil {
			return ErrScheduleNotFound
		}

		changed := map[string]any{}
		if req.CronExpression != nil {
			changed["cron_expression"] = map[string]string{"from": sc.CronExpression, "to": *req.CronExpression}
			sc.CronExpression = *req.CronExpression
		}
		if req.Timezone != nil {
			changed["timezone"] = map[string]string{"from": sc.Timezone, "to": *req.Timezone}
			sc.Timezone = *req.Timezone
		}
		if req.IsActive != nil {
			changed["is_active"] = *req.IsActive
			sc.IsActive = *req.IsActive
		}
		if req.Notes != nil {
			sc.Notes = req.Notes
		}
		sc.UpdatedBy = utils.ToPtr(req.UpdatedBy)
		sc.UpdatedAt = utils.UTCNowPtr()

		if err := s.scheduleRepo.Update(txCtx, sc); err != nil {
			return err
		}
		schedule = sc

		details := map[string]any{"changed": changed}
		if metadata != nil {
			details["client"] = metadata
		}
		resourceID := string(market)
		return writeAudit(txCtx, s.auditRepo, req.UpdatedBy, models.AuditActionScheduleUpdated,
			models.AuditResourceRefreshSchedule, &resourceID, details, &market, nil)
	})
	if err != nil {
		if IsScheduleNotFound(err) {
			return nil, NewBusinessError("SCHEDULE_NOT_FOUND", "Schedule not found for market", err)
		}
		return nil, NewBusinessError("SCHEDULE_UPDATE_FAILED", "Failed to update schedule", err)
	}

	return &dto.UpdateScheduleResponse{
		Message:  "Schedule updated successfully",
		Schedule: mapScheduleItem(schedule),
	}, nil
}

func mapScheduleItem(sc *models.RefreshSchedule) dto.ScheduleItem {
	return dto.ScheduleItem{
		Market:                 string(sc.Market),
		CronExpression:         sc.CronExpression,
		Timezone:               sc.Timezone,
		LastRunAt:              formatTimePtr(sc.LastRunAt),
		LastRunStatus:          sc.LastRunStatus,
		LastRunTopicsProcessed: sc.LastRunTopicsProcessed,
		NextRunAt:              formatTimePtr(sc.NextRunAt),
		IsActive:               sc.IsActive,
		UpdatedBy:              sc.UpdatedBy,
		UpdatedAt:              formatTimePtr(sc.UpdatedAt),
		Notes:                  sc.Notes,
	}
}
