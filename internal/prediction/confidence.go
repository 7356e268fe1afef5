package prediction

import (
	"math"

	"github.com/yourusername/veloform/internal/models"
)

const (
	confidenceBase = 0.5
	confidenceMin  = 0.1
	confidenceMax  = 0.95
)

// calculateConfidence scores how much the inputs can be trusted, from a
// 0.5 base adjusted for recent-race volume, affinity sample size, skill
// certainty and rumour corroboration.
func calculateConfidence(in models.RiderPredictionInput) float64 {
	confidence := confidenceBase

	switch {
	case in.Form.RacesCount >= 5:
		confidence += 0.15
	case in.Form.RacesCount >= 3:
		confidence += 0.10
	case in.Form.RacesCount == 0:
		confidence -= 0.20
	}

	switch {
	case in.AffinitySamples >= 10:
		confidence += 0.15
	case in.AffinitySamples >= 5:
		confidence += 0.10
	case in.AffinitySamples == 0:
		confidence -= 0.15
	}

	stdDev := math.Sqrt(in.SkillVariance)
	switch {
	case stdDev < 100:
		confidence += 0.10
	case stdDev > 250:
		confidence -= 0.10
	}

	if in.TipCount >= 3 {
		confidence += 0.05
	}

	return clamp(confidence, confidenceMin, confidenceMax)
}
