// Package tests contains test cases for models, repository, and business flow packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/shortsintel/shorts-intel-hub/app/dto"
	businessflow "github.com/shortsintel/shorts-intel-hub/business_flow"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	testingutil "github.com/shortsintel/shorts-intel-hub/testing"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRankingFlow(testDB *testingutil.TestDB) (businessflow.RankingFlow, repository.AuditLogRepository) {
	configRepo := repository.NewRankingConfigRepository(testDB.DB)
	topicRepo := repository.NewTopicRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	flow := businessflow.NewRankingFlow(configRepo, topicRepo, auditRepo, testDB.DB, nil)
	return flow, auditRepo
}

func TestUpdateRankingConfigFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, auditRepo := newRankingFlow(testDB)
		configRepo := repository.NewRankingConfigRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("CreatesFirstConfig", func(t *testing.T) {
			resp, err := flow.UpdateRankingConfig(ctx, &dto.UpdateRankingConfigRequest{
				Market:             "JP",
				Gender:             "male",
				Age:                "18-24",
				VelocityWeight:     0.40,
				CreationRateWeight: 0.35,
				WatchtimeWeight:    0.25,
				UpdatedBy:          "ops@shorts-intel-hub.test",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "JP", resp.Config.Market)
			assert.Equal(t, "male 18-24", resp.Config.TargetDemo)
			assert.Equal(t, 0.40, resp.Config.Weights.Velocity)
			assert.True(t, resp.Config.IsActive)
		})

		t.Run("WritesAuditEntry", func(t *testing.T) {
			entries, err := auditRepo.ByFilter(ctx, models.AuditLogFilter{
				Action: utils.ToPtr(models.AuditActionRankingConfigUpdated),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "ops@shorts-intel-hub.test", entries[0].ActorEmail)
			require.NotNil(t, entries[0].Market)
			assert.Equal(t, models.MarketJP, *entries[0].Market)
		})

		t.Run("DeactivatesPreviousConfig", func(t *testing.T) {
			resp, err := flow.UpdateRankingConfig(ctx, &dto.UpdateRankingConfigRequest{
				Market:             "JP",
				Gender:             "male",
				Age:                "18-24",
				VelocityWeight:     0.50,
				CreationRateWeight: 0.30,
				WatchtimeWeight:    0.20,
				UpdatedBy:          "ops@shorts-intel-hub.test",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 0.50, resp.Config.Weights.Velocity)

			active, err := configRepo.ActiveBySegment(ctx, testSegment)
			require.NoError(t, err)
			require.NotNil(t, active)
			assert.Equal(t, 0.50, active.VelocityWeight)

			// History keeps both rows, only one active
			total, err := configRepo.Count(ctx, models.RankingConfigFilter{Market: utils.ToPtr(models.MarketJP)})
			require.NoError(t, err)
			assert.Equal(t, int64(2), total)
			activeCount, err := configRepo.Count(ctx, models.RankingConfigFilter{
				Market:   utils.ToPtr(models.MarketJP),
				IsActive: utils.ToPtr(true),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), activeCount)
		})

		t.Run("RejectsWeightSumOutsideTolerance", func(t *testing.T) {
			_, err := flow.UpdateRankingConfig(ctx, &dto.UpdateRankingConfigRequest{
				Market:             "JP",
				Gender:             "male",
				Age:                "18-24",
				VelocityWeight:     0.50,
				CreationRateWeight: 0.50,
				WatchtimeWeight:    0.50,
				UpdatedBy:          "ops@shorts-intel-hub.test",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsWeightsSumInvalid(err))
		})

		t.Run("RejectsWeightOutOfRange", func(t *testing.T) {
			_, err := flow.UpdateRankingConfig(ctx, &dto.UpdateRankingConfigRequest{
				Market:             "JP",
				Gender:             "male",
				Age:                "18-24",
				VelocityWeight:     1.50,
				CreationRateWeight: -0.25,
				WatchtimeWeight:    -0.25,
				UpdatedBy:          "ops@shorts-intel-hub.test",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsWeightOutOfRange(err))
		})

		t.Run("RejectsUnknownSegment", func(t *testing.T) {
			_, err := flow.UpdateRankingConfig(ctx, &dto.UpdateRankingConfigRequest{
				Market:             "US",
				Gender:             "male",
				Age:                "18-24",
				VelocityWeight:     0.40,
				CreationRateWeight: 0.35,
				WatchtimeWeight:    0.25,
				UpdatedBy:          "ops@shorts-intel-hub.test",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidSegment(err))
		})

		t.Run("RejectsMissingUpdatedBy", func(t *testing.T) {
			_, err := flow.UpdateRankingConfig(ctx, &dto.UpdateRankingConfigRequest{
				Market:             "JP",
				Gender:             "male",
				Age:                "18-24",
				VelocityWeight:     0.40,
				CreationRateWeight: 0.35,
				WatchtimeWeight:    0.25,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUpdatedByRequired(err))
		})

		t.Run("ListActiveConfigs", func(t *testing.T) {
			resp, err := flow.ListRankingConfigs(ctx, &dto.ListRankingConfigsRequest{Market: "JP"})
			require.NoError(t, err)
			require.Len(t, resp.Configs, 1)
			assert.Equal(t, 0.50, resp.Configs[0].Weights.Velocity)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRecalculateSegmentFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, auditRepo := newRankingFlow(testDB)
		topicRepo := repository.NewTopicRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("FailsWithoutActiveConfig", func(t *testing.T) {
			_, err := flow.RecalculateSegment(ctx, testSegment, "ops@shorts-intel-hub.test")
			require.Error(t, err)
			assert.True(t, businessflow.IsRankingConfigNotFound(err))
		})

		t.Run("RanksActiveTopics", func(t *testing.T) {
			_, err := fixtures.CreateTestConfig(testSegment, models.RankingWeights{Velocity: 0.40, CreationRate: 0.35, Watchtime: 0.25})
			require.NoError(t, err)

			low, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(10.0), utils.ToPtr(10.0), utils.ToPtr(10.0))
			require.NoError(t, err)
			high, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(90.0), utils.ToPtr(90.0), utils.ToPtr(90.0))
			require.NoError(t, err)
			_, err = fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusApproved)
			require.NoError(t, err)

			result, err := flow.RecalculateSegment(ctx, testSegment, "ops@shorts-intel-hub.test")
			require.NoError(t, err)
			assert.Equal(t, "JP", result.Market)
			assert.Equal(t, 2, result.TopicsUpdated)
			require.NotNil(t, result.Weights)
			assert.Equal(t, 0.40, result.Weights.Velocity)

			reloaded, err := topicRepo.ByUUID(ctx, high.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, reloaded.RankScore)
			assert.Equal(t, 90.0, *reloaded.RankScore)
			require.NotNil(t, reloaded.RankPosition)
			assert.Equal(t, 1, *reloaded.RankPosition)

			reloaded, err = topicRepo.ByUUID(ctx, low.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, reloaded.RankPosition)
			assert.Equal(t, 2, *reloaded.RankPosition)
		})

		t.Run("WritesAuditEntry", func(t *testing.T) {
			entries, err := auditRepo.ByFilter(ctx, models.AuditLogFilter{
				Action: utils.ToPtr(models.AuditActionRankingsRecalculated),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "ops@shorts-intel-hub.test", entries[0].ActorEmail)
		})

		t.Run("EmptySegmentSucceedsWithZeroUpdates", func(t *testing.T) {
			other := models.Segment{Market: models.MarketKR, Gender: models.GenderFemale, AgeBand: models.AgeBand25To34}
			_, err := fixtures.CreateTestConfig(other, models.RankingWeights{Velocity: 0.34, CreationRate: 0.33, Watchtime: 0.33})
			require.NoError(t, err)

			result, err := flow.RecalculateSegment(ctx, other, "ops@shorts-intel-hub.test")
			require.NoError(t, err)
			assert.Equal(t, 0, result.TopicsUpdated)
		})

		t.Run("RejectsUnknownSegment", func(t *testing.T) {
			bad := models.Segment{Market: "US", Gender: models.GenderMale, AgeBand: models.AgeBand18To24}
			_, err := flow.RecalculateSegment(ctx, bad, "ops@shorts-intel-hub.test")
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidSegment(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRecalculateAllFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, _ := newRankingFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("AllSegmentsFailWithoutConfigs", func(t *testing.T) {
			resp, err := flow.RecalculateAll(ctx, "ops@shorts-intel-hub.test")
			require.NoError(t, err)
			assert.Equal(t, 30, resp.Total)
			assert.Equal(t, 30, resp.Failed)
			assert.Equal(t, 0, resp.Skipped)
			require.Len(t, resp.Results, 30)
			assert.NotNil(t, resp.Results[0].Error)
		})

		t.Run("SucceedsWithConfigsEverywhere", func(t *testing.T) {
			_, err := fixtures.CreateDefaultConfigs()
			require.NoError(t, err)
			_, err = fixtures.CreateRankedTopics(testSegment, 3)
			require.NoError(t, err)

			resp, err := flow.RecalculateAll(ctx, "ops@shorts-intel-hub.test")
			require.NoError(t, err)
			assert.Equal(t, 30, resp.Total)
			assert.Equal(t, 0, resp.Failed)
			assert.Equal(t, 0, resp.Skipped)

			// The seeded segment reports its topic count, every other segment zero
			updated := 0
			for _, result := range resp.Results {
				updated += result.TopicsUpdated
			}
			assert.Equal(t, 3, updated)
		})

		return nil
	})
	require.NoError(t, err)
}
