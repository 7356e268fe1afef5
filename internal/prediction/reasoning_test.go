package prediction

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/veloform/internal/models"
)

func TestBuildReasoningRulesFireInOrder(t *testing.T) {
	in := &models.RiderPredictionInput{
		RiderID: uuid.New(),
		Form: models.FormScore{
			Overall:    0.6,
			RacesCount: 5,
			Trend:      models.TrendImproving,
		},
		ProfileAffinity: 0.5,
		AffinitySamples: 10,
		RumourScore:     0.8,
		TipCount:        4,
	}
	pred := &models.RacePrediction{WinProbability: 0.35, PodiumProbability: 0.7}

	reasoning := buildReasoning(in, pred)

	parts := strings.Split(reasoning, ", ")
	assert.Len(t, parts, 5)
	assert.True(t, strings.HasPrefix(reasoning, "Excellent recent form"))
	assert.Contains(t, reasoning, "trending upward")
	assert.Contains(t, reasoning, "well suited to this race profile")
	assert.Contains(t, reasoning, "strong positive buzz")
	assert.Contains(t, reasoning, "clear favourite")
}

func TestBuildReasoningNegativeSignals(t *testing.T) {
	in := &models.RiderPredictionInput{
		RiderID:         uuid.New(),
		Form:            models.FormScore{Overall: -0.4, RacesCount: 4, Trend: models.TrendDeclining},
		ProfileAffinity: -0.5,
		AffinitySamples: 8,
		RumourScore:     -0.6,
		TipCount:        3,
	}
	pred := &models.RacePrediction{WinProbability: 0.01, PodiumProbability: 0.05}

	reasoning := buildReasoning(in, pred)
	assert.Contains(t, reasoning, "poor recent form")
	assert.Contains(t, reasoning, "trending downward")
	assert.Contains(t, reasoning, "profile does not suit")
	assert.Contains(t, reasoning, "negative signals")
}

func TestBuildReasoningFallback(t *testing.T) {
	in := &models.RiderPredictionInput{
		RiderID: uuid.New(),
		Form:    models.FormScore{Trend: models.TrendStable},
	}
	pred := &models.RacePrediction{WinProbability: 0.05, PodiumProbability: 0.1}

	assert.Equal(t, "No standout signals; ranked on baseline rating", buildReasoning(in, pred))
}

func TestBuildReasoningUncorroboratedRumoursIgnored(t *testing.T) {
	in := &models.RiderPredictionInput{
		RiderID:     uuid.New(),
		Form:        models.FormScore{Trend: models.TrendStable},
		RumourScore: 1.0,
		TipCount:    1,
	}
	pred := &models.RacePrediction{}

	assert.NotContains(t, buildReasoning(in, pred), "buzz")
}
