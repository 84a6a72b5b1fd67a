package dto

// ScheduleItem is one refresh schedule row in API responses.
type ScheduleItem struct {
	Market                 string  `json:"market"`
	CronExpression         string  `json:"cron_expression"`
	Timezone               string  `json:"timezone"`
	LastRunAt              *string `json:"last_run_at,omitempty"`
	LastRunStatus          *string `json:"last_run_status,omitempty"`
	LastRunTopicsProcessed *int    `json:"last_run_topics_processed,omitempty"`
	NextRunAt              *string `json:"next_run_at,omitempty"`
	IsActive               bool    `json:"is_active"`
	UpdatedBy              *string `json:"updated_by,omitempty"`
	UpdatedAt              *string `json:"updated_at,omitempty"`
	Notes                  *string `json:"notes,omitempty"`
}

// ListSchedulesResponse lists all market schedules.
type ListSchedulesResponse struct {
	Message   string         `json:"message"`
	Schedules []ScheduleItem `json:"schedules"`
}

// UpdateScheduleRequest changes one market's refresh schedule. Nil fields keep
// their current value.
type UpdateScheduleRequest struct {
	Market         string  `json:"market" validate:"required,oneof=JP KR IN ID AUNZ"`
	CronExpression *string `json:"cron_expression,omitempty" validate:"omitempty,max=64"`
	Timezone       *string `json:"timezone,omitempty" validate:"omitempty,max=64"`
	IsActive       *bool   `json:"is_active,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	UpdatedBy      string  `json:"updated_by" validate:"required,email"`
}

// UpdateScheduleResponse returns the updated schedule.
type UpdateScheduleResponse struct {
	Message  string       `json:"message"`
	Schedule ScheduleItem `json:"schedule"`
}
