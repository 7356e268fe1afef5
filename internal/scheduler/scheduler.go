// Package scheduler runs the periodic jobs of the rating pipeline: the
// results feed poll and the inactivity variance sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloform/internal/config"
	"github.com/yourusername/veloform/internal/metrics"
	"github.com/yourusername/veloform/internal/models"
)

// RatingRunner is the slice of the rating service the scheduler drives.
type RatingRunner interface {
	ProcessRace(ctx context.Context, outcome *models.RaceOutcome) ([]models.SkillUpdate, error)
	ApplyDynamicsSweep(ctx context.Context, cutoff time.Time, batchSize int) (int, error)
}

// OutcomeFetcher pulls finished races from the results feed.
type OutcomeFetcher interface {
	FetchOutcomes(ctx context.Context, since time.Time) ([]models.RaceOutcome, error)
}

// Scheduler manages the cron jobs of the rating pipeline
type Scheduler struct {
	cron            *cron.Cron
	ratingSvc       RatingRunner
	feed            OutcomeFetcher
	cfg             *config.Config
	logger          *logrus.Entry
	mu              sync.Mutex
	isRunning       bool
	lastPoll        time.Time
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(ratingSvc RatingRunner, feed OutcomeFetcher, cfg *config.Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		ratingSvc:       ratingSvc,
		feed:            feed,
		cfg:             cfg,
		logger:          log.WithField("component", "scheduler"),
		lastPoll:        time.Now().Add(-24 * time.Hour),
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: time.Duration(cfg.Scheduler.GracefulTimeoutS) * time.Second,
	}
}

// ScheduleFeedPoll schedules the periodic results feed poll. Outcomes
// arrive chronologically from the feed and are rated in that order.
func (s *Scheduler) ScheduleFeedPoll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(s.cfg.Scheduler.FeedPollCron, s.pollFeed)
	if err != nil {
		return fmt.Errorf("failed to add feed poll job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", s.cfg.Scheduler.FeedPollCron).Info("Feed poll scheduled")
	return nil
}

// ScheduleDynamicsSweep schedules the nightly inactivity variance sweep.
func (s *Scheduler) ScheduleDynamicsSweep() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(s.cfg.Scheduler.DynamicsSweepCron, s.sweepDynamics)
	if err != nil {
		return fmt.Errorf("failed to add dynamics sweep job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", s.cfg.Scheduler.DynamicsSweepCron).Info("Dynamics sweep scheduled")
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
}

// Stop halts the scheduler, waiting up to the graceful timeout for
// running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Graceful timeout exceeded while stopping scheduler")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) pollFeed() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	metrics.FeedPollsTotal.Inc()

	since := s.lastPollTime()
	outcomes, err := s.feed.FetchOutcomes(ctx, since)
	if err != nil {
		metrics.FeedPollErrorsTotal.Inc()
		s.logger.WithError(err).Error("Feed poll failed")
		return
	}

	// Outcomes arrive in chronological order and pools must be rated in
	// that order, so a failure stops the batch: the failed race and
	// everything after it are refetched on the next poll. The watermark
	// only ever advances past rated outcomes (the feed's since filter is
	// exclusive), so nothing is rated twice or dropped.
	rated := 0
	watermark := since
	for i := range outcomes {
		if _, err := s.ratingSvc.ProcessRace(ctx, &outcomes[i]); err != nil {
			s.logger.WithError(err).WithField("race_id", outcomes[i].RaceID).Error("Failed to rate race from feed, will retry next poll")
			break
		}
		rated++
		if outcomes[i].Date.After(watermark) {
			watermark = outcomes[i].Date
		}
	}

	s.setLastPollTime(watermark)
	s.logger.WithFields(logrus.Fields{"fetched": len(outcomes), "rated": rated}).Info("Feed poll complete")
}

func (s *Scheduler) sweepDynamics() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-time.Duration(s.cfg.Rating.DynamicsInactivityDaysMin) * 24 * time.Hour)
	touched, err := s.ratingSvc.ApplyDynamicsSweep(ctx, cutoff, s.cfg.Rating.DynamicsSweepBatchSize)
	if err != nil {
		s.logger.WithError(err).Error("Dynamics sweep failed")
		return
	}
	s.logger.WithField("riders", touched).Info("Dynamics sweep complete")
}

func (s *Scheduler) lastPollTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPoll
}

func (s *Scheduler) setLastPollTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPoll = t
}
