// Package testing provides test utilities and database setup for testing the shorts intel hub
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestConfig creates an active ranking config for the given segment.
func (tf *TestFixtures) CreateTestConfig(segment models.Segment, weights models.RankingWeights) (*models.RankingConfig, error) {
	config := &models.RankingConfig{
		Market:             segment.Market,
		TargetGender:       segment.Gender,
		TargetAgeBand:      segment.AgeBand,
		VelocityWeight:     weights.Velocity,
		CreationRateWeight: weights.CreationRate,
		WatchtimeWeight:    weights.Watchtime,
		IsActive:           true,
		CreatedBy:          "fixtures@shorts-intel-hub.test",
		CreatedAt:          utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(config).Error; err != nil {
		return nil, fmt.Errorf("failed to create test ranking config: %w", err)
	}

	return config, nil
}

// CreateDefaultConfigs creates one active config per segment with the
// default 0.40 / 0.35 / 0.25 weight split.
func (tf *TestFixtures) CreateDefaultConfigs() ([]*models.RankingConfig, error) {
	weights := models.RankingWeights{Velocity: 0.40, CreationRate: 0.35, Watchtime: 0.25}

	var configs []*models.RankingConfig
	for _, segment := range models.AllSegments() {
		config, err := tf.CreateTestConfig(segment, weights)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}

	return configs, nil
}

// CreateTestTopic creates an active topic in the given segment with the given
// raw metrics. Nil metric pointers are stored as NULL.
func (tf *TestFixtures) CreateTestTopic(segment models.Segment, velocity, creationRate, watchtime *float64) (*models.Topic, error) {
	topic := &models.Topic{
		UUID:          uuid.New(),
		Name:          fmt.Sprintf("Test Topic %d", rand.Intn(10000000)),
		Market:        segment.Market,
		TargetGender:  segment.Gender,
		TargetAgeBand: segment.AgeBand,
		Source:        models.TopicSourceAgency,
		Hashtags:      pq.StringArray{"#test", "#shorts"},
		Velocity:      velocity,
		CreationRate:  creationRate,
		Watchtime:     watchtime,
		Status:        models.TopicStatusActive,
		CreatedAt:     utils.UTCNow(),
		ExpiresAt:     utils.ToPtr(utils.UTCNow().Add(14 * 24 * time.Hour)),
	}

	if err := tf.DB.DB.Create(topic).Error; err != nil {
		return nil, fmt.Errorf("failed to create test topic: %w", err)
	}

	return topic, nil
}

// CreateTopicWithStatus creates a topic in the given lifecycle status.
func (tf *TestFixtures) CreateTopicWithStatus(segment models.Segment, status models.TopicStatus) (*models.Topic, error) {
	topic, err := tf.CreateTestTopic(segment, utils.ToPtr(50.0), utils.ToPtr(50.0), utils.ToPtr(50.0))
	if err != nil {
		return nil, err
	}

	topic.Status = status
	topic.UpdatedAt = utils.UTCNowPtr()
	if err := tf.DB.DB.Save(topic).Error; err != nil {
		return nil, fmt.Errorf("failed to update test topic status: %w", err)
	}

	return topic, nil
}

// CreateExpiredTopic creates an active topic whose expiry deadline already passed.
func (tf *TestFixtures) CreateExpiredTopic(segment models.Segment) (*models.Topic, error) {
	topic, err := tf.CreateTestTopic(segment, utils.ToPtr(10.0), utils.ToPtr(10.0), utils.ToPtr(10.0))
	if err != nil {
		return nil, err
	}

	topic.ExpiresAt = utils.ToPtr(utils.UTCNow().Add(-1 * time.Hour))
	if err := tf.DB.DB.Save(topic).Error; err != nil {
		return nil, fmt.Errorf("failed to expire test topic: %w", err)
	}

	return topic, nil
}

// CreateRankedTopics creates n active topics with descending velocity so the
// expected rank order matches creation order.
func (tf *TestFixtures) CreateRankedTopics(segment models.Segment, n int) ([]*models.Topic, error) {
	var topics []*models.Topic
	for i := 0; i < n; i++ {
		velocity := float64(100 - i*5)
		topic, err := tf.CreateTestTopic(segment, &velocity, &velocity, &velocity)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// CreateTestUpload creates an upload record in uploaded status.
func (tf *TestFixtures) CreateTestUpload(source string, market *models.Market) (*models.FileUpload, error) {
	upload := &models.FileUpload{
		UUID:       uuid.New(),
		Filename:   fmt.Sprintf("handover_%d.xlsx", rand.Intn(10000000)),
		FileSize:   utils.ToPtr(int64(24576)),
		FileType:   utils.ToPtr("xlsx"),
		Source:     source,
		Market:     market,
		Status:     models.UploadStatusUploaded,
		UploadedBy: utils.ToPtr("uploader@shorts-intel-hub.test"),
		UploadedAt: utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(upload).Error; err != nil {
		return nil, fmt.Errorf("failed to create test upload: %w", err)
	}

	return upload, nil
}

// CreateTestAuditLog creates an audit log entry.
func (tf *TestFixtures) CreateTestAuditLog(actor, action, resourceType string, market *models.Market) (*models.AuditLog, error) {
	audit := &models.AuditLog{
		ActorEmail:   actor,
		Action:       action,
		ResourceType: resourceType,
		Market:       market,
		CreatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
