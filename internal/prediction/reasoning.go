package prediction

import (
	"strings"

	"github.com/yourusername/veloform/internal/models"
)

// buildReasoning produces a short human-readable explanation by
// evaluating a fixed-order rule list over form, profile affinity,
// rumour signal and the sampled win probability.
func buildReasoning(in *models.RiderPredictionInput, pred *models.RacePrediction) string {
	if in == nil {
		return "No rider data available"
	}

	var parts []string

	switch {
	case in.Form.Overall > 0.5:
		parts = append(parts, "excellent recent form")
	case in.Form.Overall > 0.2:
		parts = append(parts, "good recent form")
	case in.Form.Overall < -0.2 && in.Form.RacesCount > 0:
		parts = append(parts, "poor recent form")
	}

	switch in.Form.Trend {
	case models.TrendImproving:
		parts = append(parts, "results trending upward")
	case models.TrendDeclining:
		parts = append(parts, "results trending downward")
	}

	if in.AffinitySamples > 0 {
		if in.ProfileAffinity > 0.3 {
			parts = append(parts, "well suited to this race profile")
		} else if in.ProfileAffinity < -0.3 {
			parts = append(parts, "profile does not suit")
		}
	}

	if in.TipCount >= 3 {
		if in.RumourScore > 0.3 {
			parts = append(parts, "strong positive buzz from the community")
		} else if in.RumourScore < -0.3 {
			parts = append(parts, "negative signals from the community")
		}
	}

	switch {
	case pred.WinProbability >= 0.3:
		parts = append(parts, "clear favourite in the simulations")
	case pred.WinProbability >= 0.15:
		parts = append(parts, "among the leading contenders")
	case pred.PodiumProbability >= 0.3:
		parts = append(parts, "a realistic podium chance")
	}

	if len(parts) == 0 {
		return "No standout signals; ranked on baseline rating"
	}
	sentence := strings.Join(parts, ", ")
	return strings.ToUpper(sentence[:1]) + sentence[1:]
}
