package models

import (
	"encoding/json"
	"time"
)

// AuditLog is one immutable record of a state-changing action. Append-only.
// Table: audit_logs
type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ActorEmail   string          `gorm:"size:255;not null;index:idx_audit_actor" json:"actor_email"`
	Action       string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	ResourceType string          `gorm:"size:64;not null" json:"resource_type"`
	ResourceID   *string         `gorm:"size:255;index:idx_audit_resource_id" json:"resource_id,omitempty"`
	Details      json.RawMessage `gorm:"type:jsonb" json:"details,omitempty"`
	Market       *Market         `gorm:"size:8;index:idx_audit_market" json:"market,omitempty"`
	Source       *string         `gorm:"size:32" json:"source,omitempty"`
	CreatedAt    time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionRankingConfigUpdated  = "ranking_config_updated"
	AuditActionRankingsRecalculated  = "rankings_recalculated"
	AuditActionTopicApproved         = "topic_approved"
	AuditActionTopicDeleted          = "topic_deleted"
	AuditActionTopicsArchived        = "topics_archived"
	AuditActionScheduleUpdated       = "schedule_updated"
	AuditActionUploadStatusChanged   = "upload_status_changed"
	AuditActionRetentionSweepApplied = "retention_sweep_applied"
)

// Audit resource type constants
const (
	AuditResourceRankingConfig   = "ranking_config"
	AuditResourceTopic           = "topic"
	AuditResourceRefreshSchedule = "refresh_schedule"
	AuditResourceFileUpload      = "file_upload"
)

// AuditLogFilter represents filter criteria for audit log queries.
type AuditLogFilter struct {
	ActorEmail    *string
	Action        *string
	ResourceType  *string
	ResourceID    *string
	Market        *Market
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
