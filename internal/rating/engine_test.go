package rating

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/veloform/internal/models"
)

func position(p int) *int {
	return &p
}

func twoRiderRace() ([]models.RaceResult, map[uuid.UUID]*models.RiderSkill, uuid.UUID, uuid.UUID) {
	riderA := uuid.New()
	riderB := uuid.New()
	results := []models.RaceResult{
		{RiderID: riderA, Position: position(1)},
		{RiderID: riderB, Position: position(2)},
	}
	skills := map[uuid.UUID]*models.RiderSkill{
		riderA: models.NewRiderSkill(riderA),
		riderB: models.NewRiderSkill(riderB),
	}
	return results, skills, riderA, riderB
}

func TestCalculateElo(t *testing.T) {
	assert.InDelta(t, 1500-3*350, models.CalculateElo(1500, 350*350), 1e-9)
	assert.InDelta(t, 1700-3*100, models.CalculateElo(1700, 100*100), 1e-9)

	// Monotonic increasing in mean, decreasing in variance.
	assert.Greater(t, models.CalculateElo(1600, 10000), models.CalculateElo(1500, 10000))
	assert.Less(t, models.CalculateElo(1500, 40000), models.CalculateElo(1500, 10000))
}

func TestProcessRaceTwoRiders(t *testing.T) {
	engine := NewEngine(WithSampler(NewSampler(1)))
	results, skills, riderA, riderB := twoRiderRace()

	updates := engine.ProcessRace(results, skills)
	require.Len(t, updates, 2)

	winner := skills[riderA]
	loser := skills[riderB]

	assert.Greater(t, winner.Mean, models.InitialMean)
	assert.Less(t, loser.Mean, models.InitialMean)
	assert.Less(t, winner.Variance, models.InitialVariance)
	assert.Less(t, loser.Variance, models.InitialVariance)

	for _, u := range updates {
		assert.InDelta(t, u.NewMean-u.OldMean, u.RatingDelta, 1e-9)
	}
	assert.Equal(t, 1, winner.RacesTotal)
	assert.Equal(t, 1, loser.RacesTotal)
}

func TestProcessRaceSymmetry(t *testing.T) {
	engine := NewEngine(WithSampler(NewSampler(1)))
	results, skills, riderA, riderB := twoRiderRace()
	engine.ProcessRace(results, skills)

	// With identical priors the winner's gain mirrors the loser's loss.
	gain := skills[riderA].Mean - models.InitialMean
	loss := models.InitialMean - skills[riderB].Mean
	assert.InDelta(t, gain, loss, 1e-6)
}

func TestProcessRaceFewerThanTwoFinishers(t *testing.T) {
	engine := NewEngine()
	riderA := uuid.New()
	riderB := uuid.New()

	tests := []struct {
		name    string
		results []models.RaceResult
	}{
		{name: "empty", results: []models.RaceResult{}},
		{name: "single finisher", results: []models.RaceResult{
			{RiderID: riderA, Position: position(1)},
		}},
		{name: "one finisher one dnf", results: []models.RaceResult{
			{RiderID: riderA, Position: position(1)},
			{RiderID: riderB, DNF: true},
		}},
		{name: "all dnf", results: []models.RaceResult{
			{RiderID: riderA, DNF: true},
			{RiderID: riderB, DNF: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skills := map[uuid.UUID]*models.RiderSkill{
				riderA: models.NewRiderSkill(riderA),
			}
			updates := engine.ProcessRace(tt.results, skills)

			assert.Empty(t, updates)
			assert.InDelta(t, models.InitialMean, skills[riderA].Mean, 1e-9)
			assert.InDelta(t, models.InitialVariance, skills[riderA].Variance, 1e-9)
			assert.Equal(t, 0, skills[riderA].RacesTotal)
		})
	}
}

func TestProcessRaceExcludesDNFAndNilPosition(t *testing.T) {
	engine := NewEngine()
	riderA := uuid.New()
	riderB := uuid.New()
	dnfRider := uuid.New()
	noPosition := uuid.New()

	results := []models.RaceResult{
		{RiderID: riderA, Position: position(1)},
		{RiderID: dnfRider, Position: position(2), DNF: true},
		{RiderID: riderB, Position: position(3)},
		{RiderID: noPosition},
	}
	skills := map[uuid.UUID]*models.RiderSkill{
		riderA:     models.NewRiderSkill(riderA),
		riderB:     models.NewRiderSkill(riderB),
		dnfRider:   models.NewRiderSkill(dnfRider),
		noPosition: models.NewRiderSkill(noPosition),
	}

	updates := engine.ProcessRace(results, skills)
	require.Len(t, updates, 2)

	assert.InDelta(t, models.InitialMean, skills[dnfRider].Mean, 1e-9)
	assert.InDelta(t, models.InitialMean, skills[noPosition].Mean, 1e-9)
	for _, u := range updates {
		assert.NotEqual(t, dnfRider, u.RiderID)
		assert.NotEqual(t, noPosition, u.RiderID)
	}
}

func TestProcessRaceAutoInitializesMissingSkills(t *testing.T) {
	engine := NewEngine()
	results, _, riderA, riderB := twoRiderRace()
	skills := map[uuid.UUID]*models.RiderSkill{}

	updates := engine.ProcessRace(results, skills)
	require.Len(t, updates, 2)

	require.Contains(t, skills, riderA)
	require.Contains(t, skills, riderB)
	for _, u := range updates {
		assert.InDelta(t, models.InitialMean, u.OldMean, 1e-9)
		assert.InDelta(t, models.InitialVariance, u.OldVariance, 1e-9)
	}
}

func TestProcessRaceVarianceFloor(t *testing.T) {
	engine := NewEngine(WithSampler(NewSampler(7)))
	riderIDs := make([]uuid.UUID, 10)
	skills := make(map[uuid.UUID]*models.RiderSkill)
	results := make([]models.RaceResult, 0, len(riderIDs))

	// Already near-certain riders must never drop below the floor.
	for i := range riderIDs {
		riderIDs[i] = uuid.New()
		skills[riderIDs[i]] = &models.RiderSkill{
			RiderID:  riderIDs[i],
			Mean:     1500,
			Variance: models.TauSquared * 1.01,
		}
		results = append(results, models.RaceResult{RiderID: riderIDs[i], Position: position(i + 1)})
	}

	engine.ProcessRace(results, skills)
	for _, skill := range skills {
		assert.GreaterOrEqual(t, skill.Variance, models.TauSquared)
	}
}

func TestProcessRaceUpsetMovesMoreThanExpectedResult(t *testing.T) {
	engine := NewEngine()
	strong := uuid.New()
	weak := uuid.New()

	buildSkills := func() map[uuid.UUID]*models.RiderSkill {
		return map[uuid.UUID]*models.RiderSkill{
			strong: {RiderID: strong, Mean: 1700, Variance: 100 * 100},
			weak:   {RiderID: weak, Mean: 1300, Variance: 100 * 100},
		}
	}

	expected := []models.RaceResult{
		{RiderID: strong, Position: position(1)},
		{RiderID: weak, Position: position(2)},
	}
	expectedSkills := buildSkills()
	engine.ProcessRace(expected, expectedSkills)
	expectedGain := expectedSkills[strong].Mean - 1700

	upset := []models.RaceResult{
		{RiderID: weak, Position: position(1)},
		{RiderID: strong, Position: position(2)},
	}
	upsetSkills := buildSkills()
	engine.ProcessRace(upset, upsetSkills)
	upsetGain := upsetSkills[weak].Mean - 1300

	assert.Greater(t, upsetGain, expectedGain)
}

func TestProcessRaceLargeFieldDeterministicWithSeed(t *testing.T) {
	const fieldSize = 50

	run := func(seed int64) []models.SkillUpdate {
		engine := NewEngine(WithSampler(NewSampler(seed)))
		results := make([]models.RaceResult, fieldSize)
		skills := make(map[uuid.UUID]*models.RiderSkill, fieldSize)
		for i := 0; i < fieldSize; i++ {
			riderID := uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i)})
			results[i] = models.RaceResult{RiderID: riderID, Position: position(i + 1)}
			skills[riderID] = models.NewRiderSkill(riderID)
		}
		return engine.ProcessRace(results, skills)
	}

	first := run(42)
	second := run(42)
	require.Len(t, first, fieldSize)
	require.Len(t, second, fieldSize)
	for i := range first {
		assert.Equal(t, first[i].RiderID, second[i].RiderID)
		assert.InDelta(t, first[i].NewMean, second[i].NewMean, 1e-12)
		assert.InDelta(t, first[i].NewVariance, second[i].NewVariance, 1e-12)
	}
}

func TestProcessRaceLargeFieldOrdering(t *testing.T) {
	const fieldSize = 60
	engine := NewEngine(WithSampler(NewSampler(99)))

	results := make([]models.RaceResult, fieldSize)
	skills := make(map[uuid.UUID]*models.RiderSkill, fieldSize)
	winnerID := uuid.New()
	lastID := uuid.New()
	for i := 0; i < fieldSize; i++ {
		riderID := uuid.New()
		if i == 0 {
			riderID = winnerID
		}
		if i == fieldSize-1 {
			riderID = lastID
		}
		results[i] = models.RaceResult{RiderID: riderID, Position: position(i + 1)}
		skills[riderID] = models.NewRiderSkill(riderID)
	}

	updates := engine.ProcessRace(results, skills)
	require.Len(t, updates, fieldSize)

	assert.Greater(t, skills[winnerID].Mean, models.InitialMean)
	assert.Less(t, skills[lastID].Mean, models.InitialMean)
	assert.Greater(t, skills[winnerID].Mean, skills[lastID].Mean)
}

func TestTruncGaussianV(t *testing.T) {
	// phi(0)/Phi(0) = sqrt(2/pi)
	assert.InDelta(t, math.Sqrt(2/math.Pi), truncGaussianV(0), 1e-9)
	// Deeply negative t is guarded by the asymptotic -t.
	assert.InDelta(t, 50.0, truncGaussianV(-50), 1e-6)
	// Large positive t needs essentially no correction.
	assert.Less(t, truncGaussianV(8), 1e-6)
}
