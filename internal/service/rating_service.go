// Package service orchestrates the rating and prediction engines over
// the persistence layer.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/veloform/internal/metrics"
	"github.com/yourusername/veloform/internal/models"
	"github.com/yourusername/veloform/internal/rating"
	"github.com/yourusername/veloform/internal/repository"
)

// RatingService loads skills, runs the rating engine over finished
// races and persists the results. Updates within one rating pool are
// serialized so concurrent callers cannot interleave and lose writes;
// the caller is still responsible for feeding races in chronological
// order per pool.
type RatingService struct {
	repos  *repository.Repositories
	engine *rating.Engine
	logger *logrus.Entry

	mu        sync.Mutex
	poolLocks map[string]*sync.Mutex
}

// NewRatingService creates a rating service
func NewRatingService(repos *repository.Repositories, engine *rating.Engine, log *logrus.Logger) *RatingService {
	return &RatingService{
		repos:     repos,
		engine:    engine,
		logger:    log.WithField("component", "rating_service"),
		poolLocks: make(map[string]*sync.Mutex),
	}
}

// ProcessRace applies a finished race to its rating pool and persists
// the updated skills plus the audit trail. Races with fewer than two
// classified finishers are recorded but produce no rating change.
func (s *RatingService) ProcessRace(ctx context.Context, outcome *models.RaceOutcome) ([]models.SkillUpdate, error) {
	if outcome == nil || len(outcome.Results) == 0 {
		return []models.SkillUpdate{}, nil
	}

	lock := s.poolLock(outcome.PoolKey())
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	riderIDs := make([]uuid.UUID, 0, len(outcome.Results))
	for i := range outcome.Results {
		riderIDs = append(riderIDs, outcome.Results[i].RiderID)
	}

	skills, err := s.repos.Skill.GetPool(ctx, outcome.Discipline, outcome.AgeCategory, riderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load skill pool: %w", err)
	}

	updates := s.engine.ProcessRace(outcome.Results, skills)
	if len(updates) == 0 {
		s.logger.WithField("race_id", outcome.RaceID).Info("Race has fewer than two classified finishers, no rating change")
		return updates, nil
	}

	changed := make([]*models.RiderSkill, 0, len(updates))
	for i := range updates {
		updates[i].RaceID = outcome.RaceID
		skill := skills[updates[i].RiderID]
		skill.Discipline = outcome.Discipline
		skill.AgeCategory = outcome.AgeCategory
		// Racing resets the inactivity baseline to the fresh variance.
		skill.BaseVariance = skill.Variance
		changed = append(changed, skill)
	}

	if err := s.repos.Skill.UpsertBatch(ctx, changed); err != nil {
		return nil, fmt.Errorf("failed to persist updated skills: %w", err)
	}
	if err := s.repos.SkillUpdate.InsertBatch(ctx, outcome.RaceID, updates); err != nil {
		return nil, fmt.Errorf("failed to persist skill updates: %w", err)
	}

	pairwise, batches := rating.UpdateStats(len(updates))
	metrics.RacesRatedTotal.Inc()
	metrics.PairwiseUpdatesTotal.Add(float64(pairwise))
	metrics.SubGroupBatchesTotal.Add(float64(batches))
	metrics.RatingUpdateDuration.Observe(time.Since(start).Seconds())

	s.logger.WithFields(logrus.Fields{
		"race_id":   outcome.RaceID,
		"pool":      outcome.PoolKey(),
		"finishers": len(updates),
		"duration":  time.Since(start),
	}).Info("Race rated")

	return updates, nil
}

// ApplyDynamicsSweep inflates the variance of riders who have not raced
// since cutoff, in batches. Returns the number of riders touched.
func (s *RatingService) ApplyDynamicsSweep(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	skills, err := s.repos.Skill.ListInactiveSince(ctx, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list inactive riders: %w", err)
	}

	now := time.Now()
	changed := make([]*models.RiderSkill, 0, len(skills))
	for _, skill := range skills {
		days := int(now.Sub(skill.UpdatedAt).Hours() / 24)
		updated := s.engine.ApplyDynamics(skill, days)
		if updated.Variance == skill.Variance {
			continue
		}
		changed = append(changed, updated)
	}

	metrics.DynamicsSweepsTotal.Inc()
	if len(changed) == 0 {
		return 0, nil
	}

	// Variance-only write: the sweep must not reset the inactivity clock,
	// and the baseline stays fixed until the rider races again.
	if err := s.repos.Skill.UpdateVarianceBatch(ctx, changed); err != nil {
		return 0, fmt.Errorf("failed to persist dynamics sweep: %w", err)
	}

	s.logger.WithField("riders", len(changed)).Info("Inactivity dynamics applied")
	return len(changed), nil
}

func (s *RatingService) poolLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.poolLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.poolLocks[key] = lock
	}
	return lock
}
