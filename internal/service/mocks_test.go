package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/yourusername/veloform/internal/models"
)

// MockSkillRepository mocks repository.SkillRepository
type MockSkillRepository struct {
	mock.Mock
}

func (m *MockSkillRepository) Get(ctx context.Context, riderID uuid.UUID, discipline, ageCategory string) (*models.RiderSkill, error) {
	args := m.Called(ctx, riderID, discipline, ageCategory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RiderSkill), args.Error(1)
}

func (m *MockSkillRepository) GetPool(ctx context.Context, discipline, ageCategory string, riderIDs []uuid.UUID) (map[uuid.UUID]*models.RiderSkill, error) {
	args := m.Called(ctx, discipline, ageCategory, riderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*models.RiderSkill), args.Error(1)
}

func (m *MockSkillRepository) Upsert(ctx context.Context, skill *models.RiderSkill) error {
	args := m.Called(ctx, skill)
	return args.Error(0)
}

func (m *MockSkillRepository) UpsertBatch(ctx context.Context, skills []*models.RiderSkill) error {
	args := m.Called(ctx, skills)
	return args.Error(0)
}

func (m *MockSkillRepository) UpdateVarianceBatch(ctx context.Context, skills []*models.RiderSkill) error {
	args := m.Called(ctx, skills)
	return args.Error(0)
}

func (m *MockSkillRepository) ListInactiveSince(ctx context.Context, cutoff time.Time, limit int) ([]*models.RiderSkill, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RiderSkill), args.Error(1)
}

func (m *MockSkillRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSkillUpdateRepository mocks repository.SkillUpdateRepository
type MockSkillUpdateRepository struct {
	mock.Mock
}

func (m *MockSkillUpdateRepository) InsertBatch(ctx context.Context, raceID uuid.UUID, updates []models.SkillUpdate) error {
	args := m.Called(ctx, raceID, updates)
	return args.Error(0)
}

func (m *MockSkillUpdateRepository) ListByRider(ctx context.Context, riderID uuid.UUID, limit int) ([]models.SkillUpdate, error) {
	args := m.Called(ctx, riderID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SkillUpdate), args.Error(1)
}

// MockResultRepository mocks repository.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) InsertOutcome(ctx context.Context, outcome *models.RaceOutcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *MockResultRepository) RecentByRider(ctx context.Context, riderID uuid.UUID, since time.Time) ([]models.RecentResult, error) {
	args := m.Called(ctx, riderID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecentResult), args.Error(1)
}

func (m *MockResultRepository) LastRaceDate(ctx context.Context, riderID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, riderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockPredictionRepository mocks repository.PredictionRepository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) InsertBatch(ctx context.Context, predictions []models.RacePrediction) error {
	args := m.Called(ctx, predictions)
	return args.Error(0)
}

func (m *MockPredictionRepository) LatestVersion(ctx context.Context, raceID uuid.UUID) (int, error) {
	args := m.Called(ctx, raceID)
	return args.Int(0), args.Error(1)
}

func (m *MockPredictionRepository) PruneVersions(ctx context.Context, raceID uuid.UUID, keep int) error {
	args := m.Called(ctx, raceID, keep)
	return args.Error(0)
}

func (m *MockPredictionRepository) ListByRace(ctx context.Context, raceID uuid.UUID, version int) ([]models.RacePrediction, error) {
	args := m.Called(ctx, raceID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RacePrediction), args.Error(1)
}
