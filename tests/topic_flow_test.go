// Package tests contains test cases for models, repository, and business flow packages to avoid circular imports
package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shortsintel/shorts-intel-hub/app/dto"
	businessflow "github.com/shortsintel/shorts-intel-hub/business_flow"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	testingutil "github.com/shortsintel/shorts-intel-hub/testing"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBridge records pushes instead of calling the downstream system.
type stubBridge struct {
	sent   bool
	err    error
	pushed []*models.Topic
}

func (b *stubBridge) Push(ctx context.Context, topic *models.Topic) (bool, error) {
	b.pushed = append(b.pushed, topic)
	return b.sent, b.err
}

func newTopicFlow(testDB *testingutil.TestDB, bridge *stubBridge) businessflow.TopicFlow {
	topicRepo := repository.NewTopicRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	return businessflow.NewTopicFlow(topicRepo, auditRepo, bridge, testDB.DB, nil)
}

func TestListTopicsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTopicFlow(testDB, &stubBridge{sent: true})
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateRankedTopics(testSegment, 5)
		require.NoError(t, err)
		krSegment := models.Segment{Market: models.MarketKR, Gender: models.GenderFemale, AgeBand: models.AgeBand25To34}
		_, err = fixtures.CreateTestTopic(krSegment, utils.ToPtr(20.0), utils.ToPtr(20.0), utils.ToPtr(20.0))
		require.NoError(t, err)

		t.Run("FiltersByMarket", func(t *testing.T) {
			resp, err := flow.ListTopics(ctx, &dto.ListTopicsRequest{Market: "JP"})
			require.NoError(t, err)
			assert.Len(t, resp.Topics, 5)
			assert.Equal(t, int64(5), resp.Pagination.Total)
			for _, topic := range resp.Topics {
				assert.Equal(t, "JP", topic.Market)
			}
		})

		t.Run("Paginates", func(t *testing.T) {
			resp, err := flow.ListTopics(ctx, &dto.ListTopicsRequest{Market: "JP", Limit: 2, Offset: 4})
			require.NoError(t, err)
			assert.Len(t, resp.Topics, 1)
			assert.Equal(t, int64(5), resp.Pagination.Total)
		})

		t.Run("FiltersByStatus", func(t *testing.T) {
			resp, err := flow.ListTopics(ctx, &dto.ListTopicsRequest{Status: "approved"})
			require.NoError(t, err)
			assert.Empty(t, resp.Topics)
		})

		t.Run("SearchMatchesName", func(t *testing.T) {
			named, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(10.0), utils.ToPtr(10.0), utils.ToPtr(10.0))
			require.NoError(t, err)

			resp, err := flow.ListTopics(ctx, &dto.ListTopicsRequest{Search: named.Name})
			require.NoError(t, err)
			require.Len(t, resp.Topics, 1)
			assert.Equal(t, named.UUID.String(), resp.Topics[0].UUID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetTopicFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTopicFlow(testDB, &stubBridge{sent: true})
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		created, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(70.0), utils.ToPtr(60.0), utils.ToPtr(50.0))
		require.NoError(t, err)

		t.Run("ReturnsTopic", func(t *testing.T) {
			resp, err := flow.GetTopic(ctx, created.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, created.UUID.String(), resp.Topic.UUID)
			assert.Equal(t, "male 18-24", resp.Topic.TargetDemo)
			require.NotNil(t, resp.Topic.Velocity)
			assert.Equal(t, 70.0, *resp.Topic.Velocity)
		})

		t.Run("InvalidUUID", func(t *testing.T) {
			_, err := flow.GetTopic(ctx, "not-a-uuid")
			require.Error(t, err)
			assert.True(t, businessflow.IsTopicUUIDInvalid(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			_, err := flow.GetTopic(ctx, "00000000-0000-4000-8000-000000000000")
			require.Error(t, err)
			assert.True(t, businessflow.IsTopicNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTopTopicsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTopicFlow(testDB, &stubBridge{sent: true})
		rankingFlow, _ := newRankingFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestConfig(testSegment, models.RankingWeights{Velocity: 0.40, CreationRate: 0.35, Watchtime: 0.25})
		require.NoError(t, err)
		_, err = fixtures.CreateRankedTopics(testSegment, 15)
		require.NoError(t, err)
		_, err = rankingFlow.RecalculateSegment(ctx, testSegment, "ops@shorts-intel-hub.test")
		require.NoError(t, err)

		t.Run("ReturnsShortlistOrdered", func(t *testing.T) {
			resp, err := flow.TopTopics(ctx, &dto.TopTopicsRequest{Market: "JP", Gender: "male", Age: "18-24"})
			require.NoError(t, err)
			assert.Equal(t, "JP", resp.Market)
			assert.Equal(t, "male 18-24", resp.Demographic)
			require.Len(t, resp.Topics, utils.ShortlistSize)

			for i, topic := range resp.Topics {
				require.NotNil(t, topic.RankPosition)
				assert.Equal(t, i+1, *topic.RankPosition)
			}
			require.NotNil(t, resp.Topics[0].RankScore)
			assert.Equal(t, 100.0, *resp.Topics[0].RankScore)
		})

		t.Run("EmptySegment", func(t *testing.T) {
			resp, err := flow.TopTopics(ctx, &dto.TopTopicsRequest{Market: "IN", Gender: "female", Age: "35-44"})
			require.NoError(t, err)
			assert.Empty(t, resp.Topics)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestApproveTopicFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		bridge := &stubBridge{sent: true}
		flow := newTopicFlow(testDB, bridge)
		topicRepo := repository.NewTopicRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("ApprovesAndPushes", func(t *testing.T) {
			topic, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(80.0), utils.ToPtr(80.0), utils.ToPtr(80.0))
			require.NoError(t, err)

			resp, err := flow.ApproveTopic(ctx, &dto.ApproveTopicRequest{
				UUID:       topic.UUID.String(),
				ApprovedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.TopicStatusApproved), resp.Topic.Status)
			assert.True(t, resp.SentToCollective)
			assert.False(t, resp.CollectivePending)
			require.Len(t, bridge.pushed, 1)

			reloaded, err := topicRepo.ByUUID(ctx, topic.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.TopicStatusApproved, reloaded.Status)
			assert.True(t, reloaded.SentToCollective)
			require.NotNil(t, reloaded.SentAt)
			require.NotNil(t, reloaded.ApprovedBy)
			assert.Equal(t, "editor@shorts-intel-hub.test", *reloaded.ApprovedBy)

			entries, err := auditRepo.ByFilter(ctx, models.AuditLogFilter{
				Action: utils.ToPtr(models.AuditActionTopicApproved),
			}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})

		t.Run("PendingWhenBridgeDisabled", func(t *testing.T) {
			bridge.sent = false
			topic, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(60.0), utils.ToPtr(60.0), utils.ToPtr(60.0))
			require.NoError(t, err)

			resp, err := flow.ApproveTopic(ctx, &dto.ApproveTopicRequest{
				UUID:       topic.UUID.String(),
				ApprovedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.NoError(t, err)
			assert.False(t, resp.SentToCollective)
			assert.True(t, resp.CollectivePending)

			reloaded, err := topicRepo.ByUUID(ctx, topic.UUID.String())
			require.NoError(t, err)
			assert.False(t, reloaded.SentToCollective)
			assert.Nil(t, reloaded.SentAt)
		})

		t.Run("RejectsNonActiveTopic", func(t *testing.T) {
			topic, err := fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusArchived)
			require.NoError(t, err)

			_, err = flow.ApproveTopic(ctx, &dto.ApproveTopicRequest{
				UUID:       topic.UUID.String(),
				ApprovedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsTopicNotActive(err))
		})

		t.Run("RejectsDoubleApproval", func(t *testing.T) {
			topic, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(50.0), utils.ToPtr(50.0), utils.ToPtr(50.0))
			require.NoError(t, err)

			_, err = flow.ApproveTopic(ctx, &dto.ApproveTopicRequest{
				UUID:       topic.UUID.String(),
				ApprovedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.ApproveTopic(ctx, &dto.ApproveTopicRequest{
				UUID:       topic.UUID.String(),
				ApprovedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsTopicNotActive(err))
		})

		t.Run("RejectsUnknownTopic", func(t *testing.T) {
			_, err := flow.ApproveTopic(ctx, &dto.ApproveTopicRequest{
				UUID:       "00000000-0000-4000-8000-000000000000",
				ApprovedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsTopicNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeleteTopicFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTopicFlow(testDB, &stubBridge{sent: true})
		topicRepo := repository.NewTopicRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("SoftDeletes", func(t *testing.T) {
			topic, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(50.0), utils.ToPtr(50.0), utils.ToPtr(50.0))
			require.NoError(t, err)

			resp, err := flow.DeleteTopic(ctx, &dto.DeleteTopicRequest{
				UUID:      topic.UUID.String(),
				DeletedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, topic.UUID.String(), resp.UUID)

			gone, err := topicRepo.ByUUID(ctx, topic.UUID.String())
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		t.Run("DeleteTwiceFails", func(t *testing.T) {
			topic, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(50.0), utils.ToPtr(50.0), utils.ToPtr(50.0))
			require.NoError(t, err)

			_, err = flow.DeleteTopic(ctx, &dto.DeleteTopicRequest{
				UUID:      topic.UUID.String(),
				DeletedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.DeleteTopic(ctx, &dto.DeleteTopicRequest{
				UUID:      topic.UUID.String(),
				DeletedBy: "editor@shorts-intel-hub.test",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsTopicNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestArchiveAndRetentionFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTopicFlow(testDB, &stubBridge{sent: true})
		topicRepo := repository.NewTopicRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ArchivesExpiredTopics", func(t *testing.T) {
			expired, err := fixtures.CreateExpiredTopic(testSegment)
			require.NoError(t, err)
			fresh, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(40.0), utils.ToPtr(40.0), utils.ToPtr(40.0))
			require.NoError(t, err)

			resp, err := flow.ArchiveExpired(ctx, nil, "scheduler@shorts-intel-hub.test")
			require.NoError(t, err)
			assert.Equal(t, 1, resp.TopicsArchived)
			require.Len(t, resp.TopicUUIDs, 1)
			assert.Equal(t, expired.UUID.String(), resp.TopicUUIDs[0])

			reloaded, err := topicRepo.ByUUID(ctx, expired.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.TopicStatusArchived, reloaded.Status)
			assert.NotNil(t, reloaded.ArchivedAt)

			reloaded, err = topicRepo.ByUUID(ctx, fresh.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.TopicStatusActive, reloaded.Status)
		})

		t.Run("ArchiveScopedToMarket", func(t *testing.T) {
			krSegment := models.Segment{Market: models.MarketKR, Gender: models.GenderMale, AgeBand: models.AgeBand18To24}
			_, err := fixtures.CreateExpiredTopic(krSegment)
			require.NoError(t, err)
			jpExpired, err := fixtures.CreateExpiredTopic(testSegment)
			require.NoError(t, err)

			resp, err := flow.ArchiveExpired(ctx, utils.ToPtr(models.MarketJP), "scheduler@shorts-intel-hub.test")
			require.NoError(t, err)
			assert.Equal(t, 1, resp.TopicsArchived)
			assert.Equal(t, jpExpired.UUID.String(), resp.TopicUUIDs[0])
		})

		t.Run("RetentionSweepDeletesOldArchived", func(t *testing.T) {
			old, err := fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusArchived)
			require.NoError(t, err)
			err = testDB.DB.Model(&models.Topic{}).Where("id = ?", old.ID).
				Update("created_at", utils.UTCNow().Add(-utils.TopicRetentionWindow-24*time.Hour)).Error
			require.NoError(t, err)

			deleted, err := flow.RetentionSweep(ctx, "scheduler@shorts-intel-hub.test")
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)

			gone, err := topicRepo.ByUUID(ctx, old.UUID.String())
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestStatsAndExportFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newTopicFlow(testDB, &stubBridge{sent: true})
		rankingFlow, _ := newRankingFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestConfig(testSegment, models.RankingWeights{Velocity: 0.40, CreationRate: 0.35, Watchtime: 0.25})
		require.NoError(t, err)
		_, err = fixtures.CreateRankedTopics(testSegment, 4)
		require.NoError(t, err)
		_, err = rankingFlow.RecalculateSegment(ctx, testSegment, "ops@shorts-intel-hub.test")
		require.NoError(t, err)

		t.Run("Stats", func(t *testing.T) {
			resp, err := flow.Stats(ctx, nil)
			require.NoError(t, err)
			require.Len(t, resp.Stats, 1)
			assert.Equal(t, "JP", resp.Stats[0].Market)
			assert.Equal(t, int64(4), resp.Stats[0].TotalTopics)
			assert.Equal(t, int64(4), resp.Stats[0].ActiveTopics)
			assert.NotNil(t, resp.Stats[0].AvgRankScore)
		})

		t.Run("ExportAllMarkets", func(t *testing.T) {
			filename, data, err := flow.ExportShortlists(ctx, nil)
			require.NoError(t, err)
			expected := fmt.Sprintf("shortlists_all_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
			assert.Equal(t, expected, filename)
			assert.NotEmpty(t, data)
		})

		t.Run("ExportSingleMarket", func(t *testing.T) {
			filename, data, err := flow.ExportShortlists(ctx, utils.ToPtr(models.MarketJP))
			require.NoError(t, err)
			expected := fmt.Sprintf("shortlists_JP_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
			assert.Equal(t, expected, filename)
			assert.NotEmpty(t, data)
		})

		return nil
	})
	require.NoError(t, err)
}
