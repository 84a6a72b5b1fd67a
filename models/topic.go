package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TopicStatus is the lifecycle status of a topic.
type TopicStatus string

const (
	TopicStatusRaw        TopicStatus = "raw"
	TopicStatusProcessing TopicStatus = "processing"
	TopicStatusActive     TopicStatus = "active"
	TopicStatusExpired    TopicStatus = "expired"
	TopicStatusApproved   TopicStatus = "approved"
	TopicStatusArchived   TopicStatus = "archived"
)

// Topic source constants
const (
	TopicSourceAgency = "agency"
	TopicSourceMusic  = "music"
)

// Topic is one candidate piece of short-video content inside a segment.
// Rank score and position are derived fields, recomputed in full on every
// recalculation pass; position is dense and 1-based among active topics of
// the segment only. Topics are soft-deleted, never removed.
// Table: topics
type Topic struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_topics_uuid" json:"uuid"`
	Name          string         `gorm:"size:512;not null" json:"name"`
	Description   *string        `gorm:"type:text" json:"description,omitempty"`
	ReferenceLink *string        `gorm:"type:text" json:"reference_link,omitempty"`
	Market        Market         `gorm:"size:8;not null;index:idx_topics_segment_status" json:"market"`
	TargetGender  Gender         `gorm:"size:16;not null;index:idx_topics_segment_status" json:"target_gender"`
	TargetAgeBand AgeBand        `gorm:"size:16;not null;index:idx_topics_segment_status" json:"target_age_band"`
	Source        string         `gorm:"size:32;not null" json:"source"`
	Hashtags      pq.StringArray `gorm:"type:text[]" json:"hashtags,omitempty"`
	Audio         *string        `gorm:"size:512" json:"audio,omitempty"`

	// Raw metric inputs on a 0-100 scale; may arrive out of range or missing.
	Velocity     *float64 `gorm:"type:numeric(10,4)" json:"velocity,omitempty"`
	CreationRate *float64 `gorm:"type:numeric(10,4)" json:"creation_rate,omitempty"`
	Watchtime    *float64 `gorm:"type:numeric(10,4)" json:"watchtime,omitempty"`

	RankScore    *float64 `gorm:"type:numeric(8,2);index:idx_topics_rank_score" json:"rank_score,omitempty"`
	RankPosition *int     `json:"rank_position,omitempty"`

	Status           TopicStatus     `gorm:"size:32;not null;default:'raw';index:idx_topics_segment_status" json:"status"`
	RawData          json.RawMessage `gorm:"type:jsonb" json:"raw_data,omitempty"`
	SentToCollective bool            `gorm:"not null;default:false" json:"sent_to_collective"`
	SentAt           *time.Time      `json:"sent_at,omitempty"`

	IsDeleted  bool       `gorm:"not null;default:false;index:idx_topics_segment_status" json:"is_deleted"`
	CreatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_topics_created_at" json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	ExpiresAt  *time.Time `gorm:"index:idx_topics_expires_at" json:"expires_at,omitempty"`
	ApprovedBy *string    `gorm:"size:255" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

// Segment returns the segment key this topic belongs to.
func (t *Topic) Segment() Segment {
	return Segment{Market: t.Market, Gender: t.TargetGender, AgeBand: t.TargetAgeBand}
}

// IsRankable reports whether the topic participates in recalculation passes.
// Approved topics are terminal for ranking purposes.
func (t *Topic) IsRankable() bool {
	return t.Status == TopicStatusActive && !t.IsDeleted
}

// TopicFilter represents filter criteria for topic queries. Nil fields are
// ignored. Search matches name and description case-insensitively.
type TopicFilter struct {
	Market        *Market
	TargetGender  *Gender
	TargetAgeBand *AgeBand
	Status        *TopicStatus
	Source        *string
	Search        *string
	IsDeleted     *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// TopicSortFields is the allowlist of sortable topic columns.
var TopicSortFields = map[string]bool{
	"rank_score": true,
	"created_at": true,
	"updated_at": true,
}

// MarketStats aggregates topic counts and scores for one market.
type MarketStats struct {
	Market         Market   `json:"market"`
	TotalTopics    int64    `json:"total_topics"`
	ActiveTopics   int64    `json:"active_topics"`
	ApprovedTopics int64    `json:"approved_topics"`
	ExpiredTopics  int64    `json:"expired_topics"`
	ArchivedTopics int64    `json:"archived_topics"`
	AvgRankScore   *float64 `json:"avg_rank_score,omitempty"`
}
