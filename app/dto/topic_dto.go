package dto

// ListTopicsRequest filters and pages the topic list.
type ListTopicsRequest struct {
	Market string `json:"market" validate:"omitempty,oneof=JP KR IN ID AUNZ"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female"`
	Age    string `json:"age" validate:"omitempty,oneof=18-24 25-34 35-44"`
	Status string `json:"status" validate:"omitempty,oneof=raw processing active expired approved archived"`
	Search string `json:"search" validate:"omitempty,max=255"`
	Limit  int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset int    `json:"offset" validate:"omitempty,gte=0"`
	Sort   string `json:"sort" validate:"omitempty,oneof=rank_score created_at updated_at"`
	Order  string `json:"order" validate:"omitempty,oneof=asc desc"`
}

// TopicItem is one topic row in API responses.
type TopicItem struct {
	UUID          string   `json:"uuid"`
	Name          string   `json:"name"`
	Description   *string  `json:"description,omitempty"`
	ReferenceLink *string  `json:"reference_link,omitempty"`
	Market        string   `json:"market"`
	Gender        string   `json:"gender"`
	Age           string   `json:"age"`
	TargetDemo    string   `json:"target_demo"`
	Source        string   `json:"source"`
	Hashtags      []string `json:"hashtags,omitempty"`
	Audio         *string  `json:"audio,omitempty"`
	Velocity      *float64 `json:"velocity,omitempty"`
	CreationRate  *float64 `json:"creation_rate,omitempty"`
	Watchtime     *float64 `json:"watchtime,omitempty"`
	RankScore     *float64 `json:"rank_score,omitempty"`
	RankPosition  *int     `json:"rank_position,omitempty"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     *string  `json:"updated_at,omitempty"`
	ExpiresAt     *string  `json:"expires_at,omitempty"`
	ApprovedBy    *string  `json:"approved_by,omitempty"`
	ApprovedAt    *string  `json:"approved_at,omitempty"`
}

// ListTopicsResponse pages through topics.
type ListTopicsResponse struct {
	Message    string      `json:"message"`
	Topics     []TopicItem `json:"topics"`
	Pagination Pagination  `json:"pagination"`
}

// GetTopicResponse returns one topic.
type GetTopicResponse struct {
	Message string    `json:"message"`
	Topic   TopicItem `json:"topic"`
}

// TopTopicsRequest selects the shortlist of one segment.
type TopTopicsRequest struct {
	Market string `json:"market" validate:"required,oneof=JP KR IN ID AUNZ"`
	Gender string `json:"gender" validate:"required,oneof=male female"`
	Age    string `json:"age" validate:"required,oneof=18-24 25-34 35-44"`
}

// TopTopicsResponse returns the ranked shortlist of one segment.
type TopTopicsResponse struct {
	Message     string      `json:"message"`
	Market      string      `json:"market"`
	Demographic string      `json:"demographic"`
	Topics      []TopicItem `json:"topics"`
}

// ApproveTopicRequest approves one topic for the downstream agent system.
type ApproveTopicRequest struct {
	UUID       string `json:"uuid" validate:"required,uuid4"`
	ApprovedBy string `json:"approved_by" validate:"required,email"`
}

// ApproveTopicResponse confirms the approval.
type ApproveTopicResponse struct {
	Message           string    `json:"message"`
	Topic             TopicItem `json:"topic"`
	SentToCollective  bool      `json:"sent_to_collective"`
	CollectivePending bool      `json:"collective_pending,omitempty"`
}

// DeleteTopicRequest soft-deletes one topic.
type DeleteTopicRequest struct {
	UUID      string `json:"uuid" validate:"required,uuid4"`
	DeletedBy string `json:"deleted_by" validate:"required,email"`
}

// DeleteTopicResponse confirms the soft delete.
type DeleteTopicResponse struct {
	Message string `json:"message"`
	UUID    string `json:"uuid"`
}

// ArchiveExpiredResponse reports the topics moved to archived status.
type ArchiveExpiredResponse struct {
	Message        string   `json:"message"`
	TopicsArchived int      `json:"topics_archived"`
	TopicUUIDs     []string `json:"topic_uuids,omitempty"`
}

// MarketStatsItem aggregates topic counts for one market.
type MarketStatsItem struct {
	Market         string   `json:"market"`
	TotalTopics    int64    `json:"total_topics"`
	ActiveTopics   int64    `json:"active_topics"`
	ApprovedTopics int64    `json:"approved_topics"`
	ExpiredTopics  int64    `json:"expired_topics"`
	ArchivedTopics int64    `json:"archived_topics"`
	AvgRankScore   *float64 `json:"avg_rank_score,omitempty"`
}

// StatsResponse returns per-market topic statistics.
type StatsResponse struct {
	Message string            `json:"message"`
	Stats   []MarketStatsItem `json:"stats"`
}

// CollectivePayload is the fixed 6-field payload pushed downstream for an
// approved topic.
type CollectivePayload struct {
	TopicName     string   `json:"topicName"`
	Description   string   `json:"description"`
	TargetDemo    string   `json:"targetDemo"`
	ReferenceLink string   `json:"referenceLink"`
	Hashtags      []string `json:"hashtags"`
	Audio         *string  `json:"audio"`
}
