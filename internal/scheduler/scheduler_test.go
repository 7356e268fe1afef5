package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/veloform/internal/config"
	"github.com/yourusername/veloform/internal/models"
	"github.com/yourusername/veloform/internal/rating"
	"github.com/yourusername/veloform/internal/repository"
	"github.com/yourusername/veloform/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			FeedPollCron:      "0 * * * *",
			DynamicsSweepCron: "30 3 * * *",
			GracefulTimeoutS:  1,
		},
		Rating: config.RatingConfig{
			DynamicsSweepBatchSize:    100,
			DynamicsInactivityDaysMin: 30,
		},
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testScheduler(t *testing.T) *Scheduler {
	t.Helper()
	svc := service.NewRatingService(&repository.Repositories{}, rating.NewEngine(), testLogger())
	return NewScheduler(svc, nil, testConfig(), testLogger())
}

func TestSchedulerRegistersJobs(t *testing.T) {
	s := testScheduler(t)

	require.NoError(t, s.ScheduleFeedPoll())
	require.NoError(t, s.ScheduleDynamicsSweep())
	assert.Len(t, s.jobIDs, 2)
}

func TestSchedulerRejectsSchedulingWhileRunning(t *testing.T) {
	s := testScheduler(t)
	require.NoError(t, s.ScheduleFeedPoll())

	s.Start()
	defer s.Stop()

	assert.Error(t, s.ScheduleDynamicsSweep())
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	s := testScheduler(t)
	require.NoError(t, s.ScheduleDynamicsSweep())

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	s := testScheduler(t)
	s.cfg.Scheduler.FeedPollCron = "definitely not cron"
	assert.Error(t, s.ScheduleFeedPoll())
}

// stubFetcher serves outcomes strictly after the since watermark, the
// way the results feed filters.
type stubFetcher struct {
	outcomes []models.RaceOutcome
	err      error
}

func (f *stubFetcher) FetchOutcomes(_ context.Context, since time.Time) ([]models.RaceOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.RaceOutcome
	for _, o := range f.outcomes {
		if o.Date.After(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubRater struct {
	failOn map[uuid.UUID]bool
	rated  []uuid.UUID
}

func (r *stubRater) ProcessRace(_ context.Context, outcome *models.RaceOutcome) ([]models.SkillUpdate, error) {
	if r.failOn[outcome.RaceID] {
		return nil, errors.New("transient database error")
	}
	r.rated = append(r.rated, outcome.RaceID)
	return []models.SkillUpdate{}, nil
}

func (r *stubRater) ApplyDynamicsSweep(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

func TestPollFeedRetriesFailedOutcomes(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	o1 := models.RaceOutcome{RaceID: uuid.New(), Date: base.Add(1 * time.Hour)}
	o2 := models.RaceOutcome{RaceID: uuid.New(), Date: base.Add(2 * time.Hour)}
	o3 := models.RaceOutcome{RaceID: uuid.New(), Date: base.Add(3 * time.Hour)}

	fetcher := &stubFetcher{outcomes: []models.RaceOutcome{o1, o2, o3}}
	rater := &stubRater{failOn: map[uuid.UUID]bool{o2.RaceID: true}}

	s := NewScheduler(rater, fetcher, testConfig(), testLogger())
	s.setLastPollTime(base)

	s.pollFeed()
	// The failure stops the batch: the watermark sits at the last rated
	// race, and the failed race plus everything after it stay pending.
	assert.Equal(t, []uuid.UUID{o1.RaceID}, rater.rated)
	assert.True(t, s.lastPollTime().Equal(o1.Date))

	// Once the failure clears, the next poll picks up exactly where the
	// watermark left off and nothing is rated twice.
	delete(rater.failOn, o2.RaceID)
	s.pollFeed()
	assert.Equal(t, []uuid.UUID{o1.RaceID, o2.RaceID, o3.RaceID}, rater.rated)
	assert.True(t, s.lastPollTime().Equal(o3.Date))
}

func TestPollFeedKeepsWatermarkWhenFetchFails(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("feed unavailable")}
	rater := &stubRater{}

	s := NewScheduler(rater, fetcher, testConfig(), testLogger())
	mark := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s.setLastPollTime(mark)

	s.pollFeed()
	assert.True(t, s.lastPollTime().Equal(mark))
	assert.Empty(t, rater.rated)
}

func TestPollFeedKeepsWatermarkWhenFeedIsQuiet(t *testing.T) {
	fetcher := &stubFetcher{}
	rater := &stubRater{}

	s := NewScheduler(rater, fetcher, testConfig(), testLogger())
	mark := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s.setLastPollTime(mark)

	s.pollFeed()
	assert.True(t, s.lastPollTime().Equal(mark))
}
