// Package tests contains test cases for models, repository, and business flow packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	t.Run("ValidateKnownSegment", func(t *testing.T) {
		segment := models.Segment{Market: models.MarketJP, Gender: models.GenderMale, AgeBand: models.AgeBand18To24}
		assert.NoError(t, segment.Validate())
	})

	t.Run("ValidateRejectsUnknownMarket", func(t *testing.T) {
		segment := models.Segment{Market: "US", Gender: models.GenderMale, AgeBand: models.AgeBand18To24}
		assert.Error(t, segment.Validate())
	})

	t.Run("ValidateRejectsUnknownGender", func(t *testing.T) {
		segment := models.Segment{Market: models.MarketKR, Gender: "other", AgeBand: models.AgeBand25To34}
		assert.Error(t, segment.Validate())
	})

	t.Run("ValidateRejectsUnknownAgeBand", func(t *testing.T) {
		segment := models.Segment{Market: models.MarketKR, Gender: models.GenderFemale, AgeBand: "45-54"}
		assert.Error(t, segment.Validate())
	})

	t.Run("AllSegmentsEnumeratesThirty", func(t *testing.T) {
		segments := models.AllSegments()
		assert.Len(t, segments, 30)

		seen := make(map[string]bool)
		for _, segment := range segments {
			assert.NoError(t, segment.Validate())
			assert.False(t, seen[segment.String()])
			seen[segment.String()] = true
		}
	})

	t.Run("MarketSegmentsEnumeratesSix", func(t *testing.T) {
		segments := models.MarketSegments(models.MarketID)
		assert.Len(t, segments, 6)
		for _, segment := range segments {
			assert.Equal(t, models.MarketID, segment.Market)
		}
	})

	t.Run("DemoLabel", func(t *testing.T) {
		segment := models.Segment{Market: models.MarketJP, Gender: models.GenderFemale, AgeBand: models.AgeBand25To34}
		assert.Equal(t, "female 25-34", segment.DemoLabel())
		assert.Equal(t, "JP female 25-34", segment.String())
	})

	t.Run("MarketMetadata", func(t *testing.T) {
		assert.Equal(t, "Japan", models.MarketName(models.MarketJP))
		assert.Equal(t, "Australia/New Zealand", models.MarketName(models.MarketAUNZ))
		assert.Equal(t, "Asia/Tokyo", models.MarketTimezone(models.MarketJP))
		assert.Equal(t, "Australia/Sydney", models.MarketTimezone(models.MarketAUNZ))
	})
}

func TestRankingWeights(t *testing.T) {
	t.Run("NormalizedWithinTolerance", func(t *testing.T) {
		assert.True(t, models.RankingWeights{Velocity: 0.40, CreationRate: 0.35, Watchtime: 0.25}.IsNormalized())
		assert.True(t, models.RankingWeights{Velocity: 0.34, CreationRate: 0.33, Watchtime: 0.33}.IsNormalized())
		// 1.009 is inside the 0.01 tolerance
		assert.True(t, models.RankingWeights{Velocity: 0.40, CreationRate: 0.35, Watchtime: 0.259}.IsNormalized())
	})

	t.Run("RejectsSumOutsideTolerance", func(t *testing.T) {
		assert.False(t, models.RankingWeights{Velocity: 0.50, CreationRate: 0.50, Watchtime: 0.50}.IsNormalized())
		assert.False(t, models.RankingWeights{Velocity: 0.30, CreationRate: 0.30, Watchtime: 0.30}.IsNormalized())
		assert.False(t, models.RankingWeights{}.IsNormalized())
	})

	t.Run("Sum", func(t *testing.T) {
		weights := models.RankingWeights{Velocity: 0.5, CreationRate: 0.25, Watchtime: 0.25}
		assert.InDelta(t, 1.0, weights.Sum(), 1e-9)
	})
}

func TestTopicModel(t *testing.T) {
	t.Run("TableName", func(t *testing.T) {
		assert.Equal(t, "topics", models.Topic{}.TableName())
	})

	t.Run("SegmentKey", func(t *testing.T) {
		topic := &models.Topic{
			Market:        models.MarketKR,
			TargetGender:  models.GenderMale,
			TargetAgeBand: models.AgeBand35To44,
		}
		segment := topic.Segment()
		assert.Equal(t, models.MarketKR, segment.Market)
		assert.Equal(t, models.GenderMale, segment.Gender)
		assert.Equal(t, models.AgeBand35To44, segment.AgeBand)
	})

	t.Run("IsRankable", func(t *testing.T) {
		topic := &models.Topic{Status: models.TopicStatusActive}
		assert.True(t, topic.IsRankable())

		topic.Status = models.TopicStatusApproved
		assert.False(t, topic.IsRankable())

		topic.Status = models.TopicStatusActive
		topic.IsDeleted = true
		assert.False(t, topic.IsRankable())

		topic = &models.Topic{Status: models.TopicStatusArchived}
		assert.False(t, topic.IsRankable())
	})
}

func TestRefreshScheduleModel(t *testing.T) {
	now := utils.UTCNow()

	t.Run("TableName", func(t *testing.T) {
		assert.Equal(t, "refresh_schedules", models.RefreshSchedule{}.TableName())
	})

	t.Run("DueWhenNextRunUnset", func(t *testing.T) {
		schedule := &models.RefreshSchedule{IsActive: true}
		assert.True(t, schedule.IsDue(now))
	})

	t.Run("DueWhenNextRunPassed", func(t *testing.T) {
		schedule := &models.RefreshSchedule{
			IsActive:  true,
			NextRunAt: utils.ToPtr(now.Add(-time.Minute)),
		}
		assert.True(t, schedule.IsDue(now))
		assert.True(t, schedule.IsDue(*schedule.NextRunAt))
	})

	t.Run("NotDueBeforeNextRun", func(t *testing.T) {
		schedule := &models.RefreshSchedule{
			IsActive:  true,
			NextRunAt: utils.ToPtr(now.Add(time.Hour)),
		}
		assert.False(t, schedule.IsDue(now))
	})

	t.Run("NeverDueWhenInactive", func(t *testing.T) {
		schedule := &models.RefreshSchedule{IsActive: false}
		assert.False(t, schedule.IsDue(now))
	})
}

func TestFileUploadModel(t *testing.T) {
	t.Run("TableName", func(t *testing.T) {
		assert.Equal(t, "file_uploads", models.FileUpload{}.TableName())
	})

	t.Run("IsTerminal", func(t *testing.T) {
		upload := &models.FileUpload{Status: models.UploadStatusUploaded}
		assert.False(t, upload.IsTerminal())

		upload.Status = models.UploadStatusProcessing
		assert.False(t, upload.IsTerminal())

		upload.Status = models.UploadStatusCompleted
		assert.True(t, upload.IsTerminal())

		upload.Status = models.UploadStatusFailed
		assert.True(t, upload.IsTerminal())
	})
}

func TestRankingConfigModel(t *testing.T) {
	t.Run("TableName", func(t *testing.T) {
		assert.Equal(t, "ranking_configs", models.RankingConfig{}.TableName())
	})

	t.Run("Weights", func(t *testing.T) {
		config := &models.RankingConfig{
			VelocityWeight:     0.40,
			CreationRateWeight: 0.35,
			WatchtimeWeight:    0.25,
		}
		weights := config.Weights()
		assert.Equal(t, 0.40, weights.Velocity)
		assert.Equal(t, 0.35, weights.CreationRate)
		assert.Equal(t, 0.25, weights.Watchtime)
		assert.True(t, weights.IsNormalized())
	})
}
