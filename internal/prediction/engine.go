// Package prediction combines skill ratings, recent form, profile
// affinity and community rumour signals into ranked race predictions
// with Monte Carlo win/podium/top-10 probabilities.
package prediction

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/veloform/internal/form"
	"github.com/yourusername/veloform/internal/models"
)

const (
	defaultTrials = 1000

	// rumourCap bounds the community-signal contribution to +-5% of the
	// final score; full weight needs three corroborating tips.
	rumourCap      = 0.05
	rumourFullTips = 3.0

	minFinalSkill = 1.0
)

// Engine generates race predictions. It is pure: deterministic given a
// fixed random source, with no I/O.
type Engine struct {
	rng    *rand.Rand
	trials int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source used by the Monte Carlo batch.
// Tests pass a seeded source for reproducibility.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithTrials overrides the Monte Carlo trial count.
func WithTrials(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.trials = n
		}
	}
}

// NewEngine creates a prediction engine. Without options it runs 1000
// trials on a time-seeded source.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{trials: defaultTrials}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// PredictRace produces one ranked RacePrediction per input rider. An
// empty roster yields an empty list without error. Ties in final score
// keep the original input order.
func (e *Engine) PredictRace(raceID uuid.UUID, inputs []models.RiderPredictionInput) []models.RacePrediction {
	if len(inputs) == 0 {
		return []models.RacePrediction{}
	}

	probs := e.runMonteCarlo(inputs)
	now := time.Now().UTC()

	predictions := make([]models.RacePrediction, len(inputs))
	for i, in := range inputs {
		score, components := CalculateFinalScore(in)
		predictions[i] = models.RacePrediction{
			ID:                uuid.New(),
			RaceID:            raceID,
			RiderID:           in.RiderID,
			WinProbability:    probs[i].win,
			PodiumProbability: probs[i].podium,
			Top10Probability:  probs[i].top10,
			FinalScore:        score,
			Components:        components,
			Confidence:        calculateConfidence(in),
			PredictedAt:       now,
			Version:           1,
		}
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].FinalScore > predictions[j].FinalScore
	})
	for i := range predictions {
		predictions[i].PredictedPosition = i + 1
	}
	for i := range predictions {
		in := inputByRider(inputs, predictions[i].RiderID)
		predictions[i].Reasoning = buildReasoning(in, &predictions[i])
	}
	return predictions
}

// CalculateFinalScore combines the conservative skill rating with form,
// profile and rumour adjustments, returning the score and its breakdown.
func CalculateFinalScore(in models.RiderPredictionInput) (float64, models.ScoreComponents) {
	// Floor at 1 so a deeply uncertain rating cannot turn the product
	// negative or zero.
	conservative := math.Max(models.CalculateElo(in.SkillMean, in.SkillVariance), minFinalSkill)
	formMult := form.FormMultiplier(in.Form.Overall)
	profileMult := ProfileMultiplier(in.ProfileAffinity, in.AffinitySamples)
	rumourMod := rumourModifier(in.RumourScore, in.TipCount)

	components := models.ScoreComponents{
		ConservativeSkill: conservative,
		FormMultiplier:    formMult,
		ProfileMultiplier: profileMult,
		RumourModifier:    rumourMod,
	}
	return conservative * formMult * profileMult * (1 + rumourMod), components
}

// rumourModifier gates the community signal on corroboration: a single
// uncorroborated tip moves the score a third of the cap at most.
func rumourModifier(score float64, tipCount int) float64 {
	weight := math.Min(float64(tipCount)/rumourFullTips, 1.0)
	return clamp(score, -1, 1) * rumourCap * weight
}

func inputByRider(inputs []models.RiderPredictionInput, riderID uuid.UUID) *models.RiderPredictionInput {
	for i := range inputs {
		if inputs[i].RiderID == riderID {
			return &inputs[i]
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
