// Package repository provides PostgreSQL persistence for skills,
// rating history, race results and prediction snapshots.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/veloform/internal/models"
)

// SkillRepository persists rider skill distributions per rating pool.
type SkillRepository interface {
	Get(ctx context.Context, riderID uuid.UUID, discipline, ageCategory string) (*models.RiderSkill, error)
	GetPool(ctx context.Context, discipline, ageCategory string, riderIDs []uuid.UUID) (map[uuid.UUID]*models.RiderSkill, error)
	Upsert(ctx context.Context, skill *models.RiderSkill) error
	UpsertBatch(ctx context.Context, skills []*models.RiderSkill) error
	UpdateVarianceBatch(ctx context.Context, skills []*models.RiderSkill) error
	ListInactiveSince(ctx context.Context, cutoff time.Time, limit int) ([]*models.RiderSkill, error)
	Count(ctx context.Context) (int64, error)
}

// SkillUpdateRepository stores the per-race rating audit trail.
type SkillUpdateRepository interface {
	InsertBatch(ctx context.Context, raceID uuid.UUID, updates []models.SkillUpdate) error
	ListByRider(ctx context.Context, riderID uuid.UUID, limit int) ([]models.SkillUpdate, error)
}

// ResultRepository stores finished races and serves rider history for
// the form calculation.
type ResultRepository interface {
	InsertOutcome(ctx context.Context, outcome *models.RaceOutcome) error
	RecentByRider(ctx context.Context, riderID uuid.UUID, since time.Time) ([]models.RecentResult, error)
	LastRaceDate(ctx context.Context, riderID uuid.UUID) (*time.Time, error)
}

// PredictionRepository stores versioned prediction snapshots.
type PredictionRepository interface {
	InsertBatch(ctx context.Context, predictions []models.RacePrediction) error
	LatestVersion(ctx context.Context, raceID uuid.UUID) (int, error)
	ListByRace(ctx context.Context, raceID uuid.UUID, version int) ([]models.RacePrediction, error)
	PruneVersions(ctx context.Context, raceID uuid.UUID, keep int) error
}

// Repositories holds all repository implementations
type Repositories struct {
	Skill       SkillRepository
	SkillUpdate SkillUpdateRepository
	Result      ResultRepository
	Prediction  PredictionRepository
}
