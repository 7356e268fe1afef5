package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiderPredictionInput aggregates everything the prediction engine needs
// to know about one rider on the start list. All fields are supplied by
// the caller; the engine performs no I/O of its own.
type RiderPredictionInput struct {
	RiderID         uuid.UUID `json:"rider_id" validate:"required"`
	Name            string    `json:"name"`
	SkillMean       float64   `json:"skill_mean"`
	SkillVariance   float64   `json:"skill_variance" validate:"gt=0"`
	Form            FormScore `json:"form"`
	ProfileAffinity float64   `json:"profile_affinity"`
	AffinitySamples int       `json:"affinity_samples" validate:"gte=0"`
	RumourScore     float64   `json:"rumour_score" validate:"gte=-1,lte=1"`
	TipCount        int       `json:"tip_count" validate:"gte=0"`
}

// ScoreComponents is the per-factor breakdown of a final score, kept for
// audit and display.
type ScoreComponents struct {
	ConservativeSkill float64 `json:"conservative_skill"`
	FormMultiplier    float64 `json:"form_multiplier"`
	ProfileMultiplier float64 `json:"profile_multiplier"`
	RumourModifier    float64 `json:"rumour_modifier"`
}

// RacePrediction is one rider's entry in a ranked race prediction. It is
// an ephemeral, versioned snapshot owned by the caller once returned.
type RacePrediction struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	RaceID            uuid.UUID       `db:"race_id" json:"race_id"`
	RiderID           uuid.UUID       `db:"rider_id" json:"rider_id" validate:"required"`
	WinProbability    float64         `db:"win_probability" json:"win_probability" validate:"gte=0,lte=1"`
	PodiumProbability float64         `db:"podium_probability" json:"podium_probability" validate:"gte=0,lte=1"`
	Top10Probability  float64         `db:"top10_probability" json:"top10_probability" validate:"gte=0,lte=1"`
	FinalScore        float64         `db:"final_score" json:"final_score"`
	Components        ScoreComponents `db:"-" json:"components"`
	PredictedPosition int             `db:"predicted_position" json:"predicted_position" validate:"gte=1"`
	Confidence        float64         `db:"confidence" json:"confidence" validate:"gte=0.1,lte=0.95"`
	Reasoning         string          `db:"reasoning" json:"reasoning"`
	Version           int             `db:"version" json:"version"`
	PredictedAt       time.Time       `db:"predicted_at" json:"predicted_at"`
}

// ImpliedWinOdds converts the win probability into decimal odds for
// display. Returns zero when the probability is zero.
func (p *RacePrediction) ImpliedWinOdds() decimal.Decimal {
	if p.WinProbability <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(1.0 / p.WinProbability).Round(2)
}

// MeetsThreshold checks if the confidence meets the given threshold.
func (p *RacePrediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}
