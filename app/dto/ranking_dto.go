package dto

// RankingWeightsDTO is the weight triple exchanged with clients.
type RankingWeightsDTO struct {
	Velocity     float64 `json:"velocity_weight"`
	CreationRate float64 `json:"creation_rate_weight"`
	Watchtime    float64 `json:"watchtime_weight"`
}

// ListRankingConfigsRequest filters active configs by a partial segment key.
type ListRankingConfigsRequest struct {
	Market string `json:"market" validate:"omitempty,oneof=JP KR IN ID AUNZ"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female"`
	Age    string `json:"age" validate:"omitempty,oneof=18-24 25-34 35-44"`
}

// RankingConfigItem is one config row in API responses.
type RankingConfigItem struct {
	ID         uint              `json:"id"`
	Market     string            `json:"market"`
	Gender     string            `json:"gender"`
	Age        string            `json:"age"`
	TargetDemo string            `json:"target_demo"`
	Weights    RankingWeightsDTO `json:"weights"`
	IsActive   bool              `json:"is_active"`
	CreatedBy  string            `json:"created_by"`
	Notes      *string           `json:"notes,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

// ListRankingConfigsResponse lists active configs.
type ListRankingConfigsResponse struct {
	Message string              `json:"message"`
	Configs []RankingConfigItem `json:"configs"`
}

// UpdateRankingConfigRequest replaces the active weight set of one segment.
type UpdateRankingConfigRequest struct {
	Market             string  `json:"market" validate:"required,oneof=JP KR IN ID AUNZ"`
	Gender             string  `json:"gender" validate:"required,oneof=male female"`
	Age                string  `json:"age" validate:"required,oneof=18-24 25-34 35-44"`
	VelocityWeight     float64 `json:"velocity_weight" validate:"gte=0,lte=1"`
	CreationRateWeight float64 `json:"creation_rate_weight" validate:"gte=0,lte=1"`
	WatchtimeWeight    float64 `json:"watchtime_weight" validate:"gte=0,lte=1"`
	UpdatedBy          string  `json:"updated_by" validate:"required,email"`
	Notes              *string `json:"notes,omitempty"`
}

// UpdateRankingConfigResponse returns the newly activated config.
type UpdateRankingConfigResponse struct {
	Message string            `json:"message"`
	Config  RankingConfigItem `json:"config"`
}

// RecalculateRequest triggers a recalculation pass. With a full segment key it
// recalculates one segment; with no key it recalculates all segments.
type RecalculateRequest struct {
	Market      string `json:"market" validate:"omitempty,oneof=JP KR IN ID AUNZ"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female"`
	Age         string `json:"age" validate:"omitempty,oneof=18-24 25-34 35-44"`
	TriggeredBy string `json:"triggered_by" validate:"required,email"`
}

// SegmentRecalculationResult is the per-segment outcome of a recalculation pass.
type SegmentRecalculationResult struct {
	Market        string             `json:"market"`
	Demographic   string             `json:"demographic"`
	TopicsUpdated int                `json:"topics_updated"`
	Weights       *RankingWeightsDTO `json:"weights,omitempty"`
	Error         *string            `json:"error,omitempty"`
	Skipped       bool               `json:"skipped,omitempty"`
}

// RecalculateResponse reports every segment outcome of a recalculation run.
type RecalculateResponse struct {
	Message  string                       `json:"message"`
	Results  []SegmentRecalculationResult `json:"results"`
	Total    int                          `json:"total"`
	Failed   int                          `json:"failed"`
	Skipped  int                          `json:"skipped"`
}
