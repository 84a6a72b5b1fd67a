// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	businessflow "github.com/shortsintel/shorts-intel-hub/business_flow"
	"github.com/shortsintel/shorts-intel-hub/models"
	"github.com/shortsintel/shorts-intel-hub/repository"
	"github.com/shortsintel/shorts-intel-hub/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// schedulerActor is the audit actor recorded for scheduler-triggered runs.
const schedulerActor = "scheduler@shorts-intel-hub"

// refreshPeriod is the gap scheduled between weekly refresh runs.
const refreshPeriod = 7 * 24 * time.Hour

// RefreshScheduler periodically runs the weekly market refresh: archive
// expired topics, recalculate every segment of the market, record the run.
type RefreshScheduler struct {
	scheduleRepo repository.RefreshScheduleRepository
	rankingFlow  businessflow.RankingFlow
	topicFlow    businessflow.TopicFlow
	logger       *log.Logger
	interval     time.Duration
}

func NewRefreshScheduler(
	scheduleRepo repository.RefreshScheduleRepository,
	rankingFlow businessflow.RankingFlow,
	topicFlow businessflow.TopicFlow,
	interval time.Duration,
	logDir string,
) *RefreshScheduler {
	if interval <= 0 {
		interval = time.Minute
	}

	s := &RefreshScheduler{
		scheduleRepo: scheduleRepo,
		rankingFlow:  rankingFlow,
		topicFlow:    topicFlow,
		interval:     interval,
	}

	if err := s.initSchedulerLogger(logDir); err != nil {
		// Fallback to default stdout logger if file logger init fails
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a
// rotating file under the configured log directory.
func (s *RefreshScheduler) initSchedulerLogger(logDir string) error {
	if logDir == "" {
		logDir = "data"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("could not create scheduler log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "scheduler.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	mw := io.MultiWriter(os.Stdout, rotating)
	s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
	return nil
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *RefreshScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *RefreshScheduler) runOnce(ctx context.Context) {
	schedules, err := s.scheduleRepo.ByFilter(ctx, models.RefreshScheduleFilter{IsActive: utils.ToPtr(true)}, "market ASC", 0, 0)
	if err != nil {
		s.logger.Printf("scheduler: list schedules failed: %v", err)
		return
	}

	now := utils.UTCNow()
	ran := 0
	for _, schedule := range schedules {
		if ctx.Err() != nil {
			return
		}
		if !schedule.IsDue(now) {
			continue
		}
		s.refreshMarket(ctx, schedule.Market)
		ran++
	}

	// Retention runs piggybacked on refresh passes so old archived topics
	// age out without a separate timer.
	if ran > 0 && ctx.Err() == nil {
		deleted, err := s.topicFlow.RetentionSweep(ctx, schedulerActor)
		if err != nil {
			s.logger.Printf("scheduler: retention sweep failed: %v", err)
		} else if deleted > 0 {
			s.logger.Printf("scheduler: retention sweep soft-deleted %d topics", deleted)
		}
	}
}

// refreshMarket runs one market's weekly refresh: archive expired topics,
// then recalculate the market's six segments. The run outcome lands on the
// schedule row either way; a run that started is always recorded.
func (s *RefreshScheduler) refreshMarket(ctx context.Context, market models.Market) {
	s.logger.Printf("scheduler: refreshing market %s", market)
	started := utils.UTCNow()

	topicsProcessed := 0
	failures := 0

	archived, err := s.topicFlow.ArchiveExpired(ctx, &market, schedulerActor)
	if err != nil {
		s.logger.Printf("scheduler: archive expired failed for market %s: %v", market, err)
		failures++
	} else if archived.TopicsArchived > 0 {
		s.logger.Printf("scheduler: archived %d expired topics in market %s", archived.TopicsArchived, market)
	}

	for _, segment := range models.MarketSegments(market) {
		if ctx.Err() != nil {
			s.logger.Printf("scheduler: refresh of market %s interrupted", market)
			failures++
			break
		}
		res, err := s.rankingFlow.RecalculateSegment(ctx, segment, schedulerActor)
		if err != nil {
			s.logger.Printf("scheduler: recalculate segment %s failed: %v", segment, err)
			failures++
			continue
		}
		topicsProcessed += res.TopicsUpdated
	}

	status := models.ScheduleRunStatusSuccess
	switch {
	case failures > 0 && topicsProcessed == 0:
		status = models.ScheduleRunStatusFailed
	case failures > 0:
		status = models.ScheduleRunStatusPartial
	}

	nextRun := started.Add(refreshPeriod)
	if err := s.scheduleRepo.RecordRun(ctx, market, status, topicsProcessed, &nextRun); err != nil {
		s.logger.Printf("scheduler: record run failed for market %s: %v", market, err)
		return
	}

	s.logger.Printf("scheduler: market %s refresh %s, %d topics processed in %s",
		market, status, topicsProcessed, time.Since(started).Round(time.Millisecond))
}
