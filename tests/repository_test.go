// Package tests contains test cases for models, repository, and business flow packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	testingutil "github.com/shortsintel/shorts-intel-hub/testing"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSegment = models.Segment{
	Market:  models.MarketJP,
	Gender:  models.GenderMale,
	AgeBand: models.AgeBand18To24,
}

func TestRankingConfigRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewRankingConfigRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ActiveBySegmentEmpty", func(t *testing.T) {
			config, err := repo.ActiveBySegment(ctx, testSegment)
			require.NoError(t, err)
			assert.Nil(t, config)
		})

		t.Run("ActiveBySegment", func(t *testing.T) {
			created, err := fixtures.CreateTestConfig(testSegment, models.RankingWeights{Velocity: 0.40, CreationRate: 0.35, Watchtime: 0.25})
			require.NoError(t, err)

			config, err := repo.ActiveBySegment(ctx, testSegment)
			require.NoError(t, err)
			require.NotNil(t, config)
			assert.Equal(t, created.ID, config.ID)
			assert.Equal(t, 0.40, config.VelocityWeight)
			assert.True(t, config.IsActive)
		})

		t.Run("ActiveBySegmentIgnoresOtherSegments", func(t *testing.T) {
			other := models.Segment{Market: models.MarketKR, Gender: models.GenderFemale, AgeBand: models.AgeBand35To44}
			config, err := repo.ActiveBySegment(ctx, other)
			require.NoError(t, err)
			assert.Nil(t, config)
		})

		t.Run("DeactivateBySegment", func(t *testing.T) {
			deactivated, err := repo.DeactivateBySegment(ctx, testSegment)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deactivated)

			config, err := repo.ActiveBySegment(ctx, testSegment)
			require.NoError(t, err)
			assert.Nil(t, config)

			// Nothing left to deactivate
			deactivated, err = repo.DeactivateBySegment(ctx, testSegment)
			require.NoError(t, err)
			assert.Equal(t, int64(0), deactivated)
		})

		t.Run("HistoryIsAppendOnly", func(t *testing.T) {
			_, err := fixtures.CreateTestConfig(testSegment, models.RankingWeights{Velocity: 0.50, CreationRate: 0.30, Watchtime: 0.20})
			require.NoError(t, err)

			rows, err := repo.ByFilter(ctx, models.RankingConfigFilter{Market: utils.ToPtr(testSegment.Market)}, "id ASC", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 2)
			assert.False(t, rows[0].IsActive)
			assert.True(t, rows[1].IsActive)
		})

		t.Run("ByFilterIsActive", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.RankingConfigFilter{IsActive: utils.ToPtr(true)}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTopicRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTopicRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			created, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(70.0), utils.ToPtr(60.0), utils.ToPtr(50.0))
			require.NoError(t, err)

			topic, err := repo.ByUUID(ctx, created.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, topic)
			assert.Equal(t, created.ID, topic.ID)
			assert.Equal(t, created.Name, topic.Name)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			topic, err := repo.ByUUID(ctx, "00000000-0000-4000-8000-000000000000")
			require.NoError(t, err)
			assert.Nil(t, topic)
		})

		t.Run("ListRankableSkipsNonActive", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			active, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(80.0), utils.ToPtr(80.0), utils.ToPtr(80.0))
			require.NoError(t, err)
			_, err = fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusApproved)
			require.NoError(t, err)
			_, err = fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusArchived)
			require.NoError(t, err)

			topics, err := repo.ListRankable(ctx, testSegment)
			require.NoError(t, err)
			require.Len(t, topics, 1)
			assert.Equal(t, active.ID, topics[0].ID)
		})

		t.Run("UpdateRankAndTopBySegment", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			topics, err := fixtures.CreateRankedTopics(testSegment, 12)
			require.NoError(t, err)

			now := utils.UTCNow()
			for i, topic := range topics {
				err := repo.UpdateRank(ctx, topic.ID, float64(100-i*5), i+1, now)
				require.NoError(t, err)
			}

			top, err := repo.TopBySegment(ctx, testSegment, utils.ShortlistSize)
			require.NoError(t, err)
			require.Len(t, top, utils.ShortlistSize)
			assert.Equal(t, topics[0].ID, top[0].ID)
			require.NotNil(t, top[0].RankScore)
			assert.Equal(t, 100.0, *top[0].RankScore)
			require.NotNil(t, top[0].RankPosition)
			assert.Equal(t, 1, *top[0].RankPosition)
			require.NotNil(t, top[9].RankPosition)
			assert.Equal(t, 10, *top[9].RankPosition)
		})

		t.Run("UpdateRankUnknownTopic", func(t *testing.T) {
			err := repo.UpdateRank(ctx, 999999, 50.0, 1, utils.UTCNow())
			assert.Error(t, err)
		})

		t.Run("ExpiryAndArchival", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			expired, err := fixtures.CreateExpiredTopic(testSegment)
			require.NoError(t, err)
			fresh, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(40.0), utils.ToPtr(40.0), utils.ToPtr(40.0))
			require.NoError(t, err)
			negative, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(-5.0), utils.ToPtr(40.0), utils.ToPtr(40.0))
			require.NoError(t, err)

			candidates, err := repo.ListExpiredCandidates(ctx, nil, utils.UTCNow())
			require.NoError(t, err)
			require.Len(t, candidates, 2)
			assert.Equal(t, expired.ID, candidates[0].ID)
			assert.Equal(t, negative.ID, candidates[1].ID)

			archived, err := repo.ArchiveByIDs(ctx, []uint{expired.ID, negative.ID}, utils.UTCNow())
			require.NoError(t, err)
			assert.Equal(t, int64(2), archived)

			// The fresh topic stays active
			remaining, err := repo.ListRankable(ctx, testSegment)
			require.NoError(t, err)
			require.Len(t, remaining, 1)
			assert.Equal(t, fresh.ID, remaining[0].ID)
		})

		t.Run("RetentionCandidatesAndSoftDelete", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			old, err := fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusArchived)
			require.NoError(t, err)
			err = testDB.DB.Model(&models.Topic{}).Where("id = ?", old.ID).
				Update("created_at", utils.UTCNow().Add(-utils.TopicRetentionWindow-time.Hour)).Error
			require.NoError(t, err)

			_, err = fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusArchived)
			require.NoError(t, err)

			cutoff := utils.UTCNow().Add(-utils.TopicRetentionWindow)
			candidates, err := repo.ListRetentionCandidates(ctx, cutoff)
			require.NoError(t, err)
			require.Len(t, candidates, 1)
			assert.Equal(t, old.ID, candidates[0].ID)

			deleted, err := repo.SoftDeleteByIDs(ctx, []uint{old.ID}, utils.UTCNow())
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)

			// Soft-deleted rows disappear from lookups but keep their row
			topic, err := repo.ByUUID(ctx, old.UUID.String())
			require.NoError(t, err)
			assert.Nil(t, topic)

			var count int64
			require.NoError(t, testDB.DB.Model(&models.Topic{}).Where("id = ?", old.ID).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("StatsByMarket", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.CreateTestTopic(testSegment, utils.ToPtr(50.0), utils.ToPtr(50.0), utils.ToPtr(50.0))
			require.NoError(t, err)
			_, err = fixtures.CreateTopicWithStatus(testSegment, models.TopicStatusApproved)
			require.NoError(t, err)
			krSegment := models.Segment{Market: models.MarketKR, Gender: models.GenderFemale, AgeBand: models.AgeBand25To34}
			_, err = fixtures.CreateTestTopic(krSegment, utils.ToPtr(30.0), utils.ToPtr(30.0), utils.ToPtr(30.0))
			require.NoError(t, err)

			stats, err := repo.StatsByMarket(ctx, nil)
			require.NoError(t, err)
			require.Len(t, stats, 2)

			statsJP, err := repo.StatsByMarket(ctx, utils.ToPtr(models.MarketJP))
			require.NoError(t, err)
			require.Len(t, statsJP, 1)
			assert.Equal(t, models.MarketJP, statsJP[0].Market)
			assert.Equal(t, int64(2), statsJP[0].TotalTopics)
			assert.Equal(t, int64(1), statsJP[0].ActiveTopics)
			assert.Equal(t, int64(1), statsJP[0].ApprovedTopics)
		})

		t.Run("CountWithFilter", func(t *testing.T) {
			count, err := repo.Count(ctx, models.TopicFilter{Market: utils.ToPtr(models.MarketJP)})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRefreshScheduleRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewRefreshScheduleRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("SeededOnePerMarket", func(t *testing.T) {
			schedules, err := repo.ByFilter(ctx, models.RefreshScheduleFilter{}, "market ASC", 0, 0)
			require.NoError(t, err)
			assert.Len(t, schedules, len(models.AllMarkets()))
		})

		t.Run("ByMarket", func(t *testing.T) {
			schedule, err := repo.ByMarket(ctx, models.MarketJP)
			require.NoError(t, err)
			require.NotNil(t, schedule)
			assert.Equal(t, models.MarketJP, schedule.Market)
			assert.Equal(t, "Asia/Tokyo", schedule.Timezone)
			assert.True(t, schedule.IsActive)
			assert.Nil(t, schedule.LastRunAt)
		})

		t.Run("RecordRun", func(t *testing.T) {
			nextRun := utils.UTCNow().Add(7 * 24 * time.Hour)
			err := repo.RecordRun(ctx, models.MarketJP, models.ScheduleRunStatusSuccess, 42, &nextRun)
			require.NoError(t, err)

			schedule, err := repo.ByMarket(ctx, models.MarketJP)
			require.NoError(t, err)
			require.NotNil(t, schedule)
			require.NotNil(t, schedule.LastRunAt)
			require.NotNil(t, schedule.LastRunStatus)
			assert.Equal(t, models.ScheduleRunStatusSuccess, *schedule.LastRunStatus)
			require.NotNil(t, schedule.LastRunTopicsProcessed)
			assert.Equal(t, 42, *schedule.LastRunTopicsProcessed)
			require.NotNil(t, schedule.NextRunAt)
			assert.WithinDuration(t, nextRun, *schedule.NextRunAt, time.Second)
		})

		t.Run("Update", func(t *testing.T) {
			schedule, err := repo.ByMarket(ctx, models.MarketKR)
			require.NoError(t, err)
			require.NotNil(t, schedule)

			schedule.CronExpression = "0 7 * * TUE"
			schedule.UpdatedBy = utils.ToPtr("ops@shorts-intel-hub.test")
			schedule.UpdatedAt = utils.UTCNowPtr()
			require.NoError(t, repo.Update(ctx, schedule))

			reloaded, err := repo.ByMarket(ctx, models.MarketKR)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Equal(t, "0 7 * * TUE", reloaded.CronExpression)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestFileUploadRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewFileUploadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			created, err := fixtures.CreateTestUpload(models.TopicSourceAgency, utils.ToPtr(models.MarketJP))
			require.NoError(t, err)

			upload, err := repo.ByUUID(ctx, created.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, upload)
			assert.Equal(t, created.Filename, upload.Filename)
			assert.Equal(t, models.UploadStatusUploaded, upload.Status)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			upload, err := repo.ByUUID(ctx, "00000000-0000-4000-8000-000000000000")
			require.NoError(t, err)
			assert.Nil(t, upload)
		})

		t.Run("ByFilterSource", func(t *testing.T) {
			_, err := fixtures.CreateTestUpload(models.TopicSourceMusic, nil)
			require.NoError(t, err)

			uploads, err := repo.ByFilter(ctx, models.FileUploadFilter{Source: utils.ToPtr(models.TopicSourceMusic)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, uploads, 1)
			assert.Equal(t, models.TopicSourceMusic, uploads[0].Source)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAuditLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAuditLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndFilter", func(t *testing.T) {
			_, err := fixtures.CreateTestAuditLog("ops@shorts-intel-hub.test", models.AuditActionRankingsRecalculated,
				models.AuditResourceRankingConfig, utils.ToPtr(models.MarketJP))
			require.NoError(t, err)
			_, err = fixtures.CreateTestAuditLog("ops@shorts-intel-hub.test", models.AuditActionTopicApproved,
				models.AuditResourceTopic, utils.ToPtr(models.MarketKR))
			require.NoError(t, err)

			entries, err := repo.ByFilter(ctx, models.AuditLogFilter{Action: utils.ToPtr(models.AuditActionTopicApproved)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, models.AuditResourceTopic, entries[0].ResourceType)

			count, err := repo.Count(ctx, models.AuditLogFilter{ActorEmail: utils.ToPtr("ops@shorts-intel-hub.test")})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		return nil
	})
	require.NoError(t, err)
}
