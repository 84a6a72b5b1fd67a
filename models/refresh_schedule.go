package models

import "time"

// Schedule run status constants
const (
	ScheduleRunStatusSuccess = "success"
	ScheduleRunStatusPartial = "partial"
	ScheduleRunStatusFailed  = "failed"
)

// RefreshSchedule holds the weekly refresh schedule for one market.
// Exactly one row exists per market (seeded at migration time).
// Table: refresh_schedules
type RefreshSchedule struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	Market                 Market     `gorm:"size:8;not null;uniqueIndex:idx_refresh_schedules_market" json:"market"`
	CronExpression         string     `gorm:"size:64;not null" json:"cron_expression"`
	Timezone               string     `gorm:"size:64;not null" json:"timezone"`
	LastRunAt              *time.Time `json:"last_run_at,omitempty"`
	LastRunStatus          *string    `gorm:"size:32" json:"last_run_status,omitempty"`
	LastRunTopicsProcessed *int       `json:"last_run_topics_processed,omitempty"`
	NextRunAt              *time.Time `json:"next_run_at,omitempty"`
	IsActive               bool       `gorm:"not null;default:true" json:"is_active"`
	UpdatedBy              *string    `gorm:"size:255" json:"updated_by,omitempty"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty"`
	Notes                  *string    `gorm:"type:text" json:"notes,omitempty"`
}

func (RefreshSchedule) TableName() string {
	return "refresh_schedules"
}

// IsDue reports whether the schedule should run at the given instant.
func (s *RefreshSchedule) IsDue(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.NextRunAt == nil {
		return true
	}
	return !now.Before(*s.NextRunAt)
}

// RefreshScheduleFilter represents filter criteria for schedule queries.
type RefreshScheduleFilter struct {
	Market   *Market
	IsActive *bool
}
