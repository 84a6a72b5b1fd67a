package models

import (
	"math"
	"time"
)

// WeightSumTolerance is the allowed deviation of the weight sum from 1.0.
const WeightSumTolerance = 0.01

// RankingWeights is the weight triple applied to a topic's raw metrics.
type RankingWeights struct {
	Velocity     float64 `json:"velocity_weight"`
	CreationRate float64 `json:"creation_rate_weight"`
	Watchtime    float64 `json:"watchtime_weight"`
}

// Sum returns the total of the three weights.
func (w RankingWeights) Sum() float64 {
	return w.Velocity + w.CreationRate + w.Watchtime
}

// IsNormalized reports whether the weights sum to 1.0 within tolerance.
func (w RankingWeights) IsNormalized() bool {
	return math.Abs(w.Sum()-1.0) <= WeightSumTolerance
}

// RankingConfig is one versioned weight set for a segment.
// Config history is append-only: updating a segment's weights inserts a new
// row and deactivates the previous active one; rows are never mutated after
// deactivation. At most one row per segment has is_active = true, enforced by
// a partial unique index.
// Table: ranking_configs
type RankingConfig struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Market             Market     `gorm:"size:8;not null;uniqueIndex:idx_ranking_configs_active_segment,where:is_active;index:idx_ranking_configs_segment" json:"market"`
	TargetGender       Gender     `gorm:"size:16;not null;uniqueIndex:idx_ranking_configs_active_segment,where:is_active;index:idx_ranking_configs_segment" json:"target_gender"`
	TargetAgeBand      AgeBand    `gorm:"size:16;not null;uniqueIndex:idx_ranking_configs_active_segment,where:is_active;index:idx_ranking_configs_segment" json:"target_age_band"`
	VelocityWeight     float64    `gorm:"type:numeric(5,4);not null" json:"velocity_weight"`
	CreationRateWeight float64    `gorm:"type:numeric(5,4);not null" json:"creation_rate_weight"`
	WatchtimeWeight    float64    `gorm:"type:numeric(5,4);not null" json:"watchtime_weight"`
	IsActive           bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedBy          string     `gorm:"size:255;not null" json:"created_by"`
	Notes              *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt          time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_ranking_configs_created_at" json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

func (RankingConfig) TableName() string {
	return "ranking_configs"
}

// Segment returns the segment key this config belongs to.
func (c *RankingConfig) Segment() Segment {
	return Segment{Market: c.Market, Gender: c.TargetGender, AgeBand: c.TargetAgeBand}
}

// Weights returns the config's weight triple.
func (c *RankingConfig) Weights() RankingWeights {
	return RankingWeights{
		Velocity:     c.VelocityWeight,
		CreationRate: c.CreationRateWeight,
		Watchtime:    c.WatchtimeWeight,
	}
}

// RankingConfigFilter represents filter criteria for ranking config queries.
// Nil fields are ignored, so a partial segment key lists configs across the
// unspecified dimensions.
type RankingConfigFilter struct {
	Market        *Market
	TargetGender  *Gender
	TargetAgeBand *AgeBand
	IsActive      *bool
	CreatedBy     *string
}
