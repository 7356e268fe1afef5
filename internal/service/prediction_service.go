package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/veloform/internal/form"
	"github.com/yourusername/veloform/internal/metrics"
	"github.com/yourusername/veloform/internal/models"
	"github.com/yourusername/veloform/internal/prediction"
	"github.com/yourusername/veloform/internal/repository"
)

const formWindow = 90 * 24 * time.Hour

// AffinityProvider supplies a rider's affinity for a race profile plus
// the sample size backing it. Implemented by the stats-aggregation side
// of the application.
type AffinityProvider interface {
	ProfileAffinity(ctx context.Context, riderID uuid.UUID, profile models.ProfileType) (affinity float64, samples int, err error)
}

// RumourProvider supplies the aggregated community signal for a rider:
// a score in [-1,1] and the number of corroborating tips.
type RumourProvider interface {
	RumourSignal(ctx context.Context, riderID uuid.UUID, raceID uuid.UUID) (score float64, tipCount int, err error)
}

// NeutralAffinity is the fallback provider when no profile statistics
// are available.
type NeutralAffinity struct{}

// ProfileAffinity always reports no affinity data.
func (NeutralAffinity) ProfileAffinity(context.Context, uuid.UUID, models.ProfileType) (float64, int, error) {
	return 0, 0, nil
}

// NoRumours is the fallback provider when no community signals flow in.
type NoRumours struct{}

// RumourSignal always reports no tips.
func (NoRumours) RumourSignal(context.Context, uuid.UUID, uuid.UUID) (float64, int, error) {
	return 0, 0, nil
}

// StartListEntry identifies one rider on a race start list.
type StartListEntry struct {
	RiderID uuid.UUID
	Name    string
}

// RaceInfo describes the race being predicted.
type RaceInfo struct {
	RaceID      uuid.UUID
	Discipline  string
	AgeCategory string
	ProfileType models.ProfileType
	Date        time.Time
}

// PredictionOptions carries the tunables of the prediction service.
type PredictionOptions struct {
	// FormCacheTTL bounds how long a rider's computed form is reused.
	FormCacheTTL time.Duration
	// FormCacheMaxEntries caps the form cache; once full, fresh scores
	// are computed but not cached. Zero means unbounded.
	FormCacheMaxEntries int
	// SnapshotVersionLimit keeps only the newest N snapshot versions per
	// race. Zero keeps everything.
	SnapshotVersionLimit int
}

// PredictionService assembles prediction inputs from the persistence
// layer and collaborators, runs the prediction engine and stores the
// versioned snapshot.
type PredictionService struct {
	repos         *repository.Repositories
	engine        *prediction.Engine
	affinity      AffinityProvider
	rumours       RumourProvider
	formCache     *cache.Cache
	formCacheMax  int
	snapshotLimit int
	logger        *logrus.Entry
}

// NewPredictionService creates a prediction service. Nil providers fall
// back to neutral implementations.
func NewPredictionService(
	repos *repository.Repositories,
	engine *prediction.Engine,
	affinity AffinityProvider,
	rumours RumourProvider,
	opts PredictionOptions,
	log *logrus.Logger,
) *PredictionService {
	if affinity == nil {
		affinity = NeutralAffinity{}
	}
	if rumours == nil {
		rumours = NoRumours{}
	}
	return &PredictionService{
		repos:         repos,
		engine:        engine,
		affinity:      affinity,
		rumours:       rumours,
		formCache:     cache.New(opts.FormCacheTTL, 2*opts.FormCacheTTL),
		formCacheMax:  opts.FormCacheMaxEntries,
		snapshotLimit: opts.SnapshotVersionLimit,
		logger:        log.WithField("component", "prediction_service"),
	}
}

// PredictRace generates, persists and returns ranked predictions for a
// race start list. Per-rider data failures degrade that rider to
// neutral inputs instead of failing the race.
func (s *PredictionService) PredictRace(ctx context.Context, race RaceInfo, startList []StartListEntry) ([]models.RacePrediction, error) {
	if len(startList) == 0 {
		return []models.RacePrediction{}, nil
	}

	start := time.Now()

	inputs := make([]models.RiderPredictionInput, 0, len(startList))
	for _, entry := range startList {
		input, err := s.buildInput(ctx, race, entry)
		if err != nil {
			s.logger.WithError(err).WithField("rider_id", entry.RiderID).Warn("Skipping rider with unreadable data")
			continue
		}
		inputs = append(inputs, input)
	}

	predictions := s.engine.PredictRace(race.RaceID, inputs)
	if len(predictions) == 0 {
		return predictions, nil
	}

	version, err := s.repos.Prediction.LatestVersion(ctx, race.RaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve snapshot version: %w", err)
	}
	for i := range predictions {
		predictions[i].Version = version + 1
	}

	if err := s.repos.Prediction.InsertBatch(ctx, predictions); err != nil {
		return nil, fmt.Errorf("failed to persist predictions: %w", err)
	}

	if s.snapshotLimit > 0 {
		if err := s.repos.Prediction.PruneVersions(ctx, race.RaceID, s.snapshotLimit); err != nil {
			s.logger.WithError(err).WithField("race_id", race.RaceID).Warn("Failed to prune old prediction snapshots")
		}
	}

	metrics.PredictionsGeneratedTotal.Add(float64(len(predictions)))
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	s.logger.WithFields(logrus.Fields{
		"race_id":  race.RaceID,
		"riders":   len(predictions),
		"version":  version + 1,
		"duration": time.Since(start),
	}).Info("Race predictions generated")

	return predictions, nil
}

// buildInput gathers one rider's skill, form, affinity and rumour data.
func (s *PredictionService) buildInput(ctx context.Context, race RaceInfo, entry StartListEntry) (models.RiderPredictionInput, error) {
	input := models.RiderPredictionInput{
		RiderID:       entry.RiderID,
		Name:          entry.Name,
		SkillMean:     models.InitialMean,
		SkillVariance: models.InitialVariance,
	}

	skill, err := s.repos.Skill.Get(ctx, entry.RiderID, race.Discipline, race.AgeCategory)
	switch {
	case err == nil:
		input.SkillMean = skill.Mean
		input.SkillVariance = skill.Variance
	case errors.Is(err, models.ErrNotFound):
		// Unrated rider, keep the default prior.
	default:
		return input, fmt.Errorf("failed to load skill: %w", err)
	}

	formScore, err := s.riderForm(ctx, entry.RiderID, race.Date)
	if err != nil {
		return input, fmt.Errorf("failed to compute form: %w", err)
	}
	input.Form = formScore

	affinity, samples, err := s.affinity.ProfileAffinity(ctx, entry.RiderID, race.ProfileType)
	if err != nil {
		s.logger.WithError(err).WithField("rider_id", entry.RiderID).Debug("Affinity lookup failed, using neutral")
	} else {
		input.ProfileAffinity = affinity
		input.AffinitySamples = samples
	}

	score, tips, err := s.rumours.RumourSignal(ctx, entry.RiderID, race.RaceID)
	if err != nil {
		s.logger.WithError(err).WithField("rider_id", entry.RiderID).Debug("Rumour lookup failed, using neutral")
	} else {
		input.RumourScore = score
		input.TipCount = tips
	}

	return input, nil
}

// riderForm computes the rider's form as of the race date, with a TTL
// cache in front of the history query.
func (s *PredictionService) riderForm(ctx context.Context, riderID uuid.UUID, raceDate time.Time) (models.FormScore, error) {
	key := riderID.String() + ":" + raceDate.Format("2006-01-02")
	if cached, ok := s.formCache.Get(key); ok {
		return cached.(models.FormScore), nil
	}

	results, err := s.repos.Result.RecentByRider(ctx, riderID, raceDate.Add(-formWindow))
	if err != nil {
		return models.FormScore{}, err
	}

	score := form.CalculateForm(results, raceDate)
	if s.formCacheMax <= 0 || s.formCache.ItemCount() < s.formCacheMax {
		s.formCache.SetDefault(key, score)
	}
	metrics.FormCacheEntries.Set(float64(s.formCache.ItemCount()))
	return score, nil
}
