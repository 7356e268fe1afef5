package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Rating system constants. All uncertainty values are variances, not
// standard deviations.
const (
	InitialMean     = 1500.0
	InitialVariance = 350.0 * 350.0

	// Beta is the performance noise added on top of skill when two riders
	// are compared head to head.
	Beta        = 175.0
	BetaSquared = Beta * Beta

	// Tau bounds how certain the system is ever allowed to become about a
	// rider, and drives variance inflation during inactivity.
	Tau        = 35.0
	TauSquared = Tau * Tau
)

// RiderSkill represents the belief distribution over a rider's latent
// ability within one (discipline, age category) rating pool.
type RiderSkill struct {
	RiderID     uuid.UUID `db:"rider_id" json:"rider_id" validate:"required"`
	Discipline  string    `db:"discipline" json:"discipline"`
	AgeCategory string    `db:"age_category" json:"age_category"`
	Mean        float64   `db:"mean" json:"mean" validate:"required"`
	Variance    float64   `db:"variance" json:"variance" validate:"required,gt=0"`
	// BaseVariance is the variance as of the rider's last rated race.
	// Inactivity inflation is always computed from this baseline, so
	// repeated sweeps converge on the same target instead of compounding.
	BaseVariance float64   `db:"base_variance" json:"base_variance"`
	RacesTotal   int       `db:"races_total" json:"races_total" validate:"gte=0"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// NewRiderSkill returns the default prior for an unrated rider.
func NewRiderSkill(riderID uuid.UUID) *RiderSkill {
	return &RiderSkill{
		RiderID:      riderID,
		Mean:         InitialMean,
		Variance:     InitialVariance,
		BaseVariance: InitialVariance,
	}
}

// StdDev returns the standard deviation of the skill belief.
func (s *RiderSkill) StdDev() float64 {
	return math.Sqrt(s.Variance)
}

// ConservativeRating returns mean minus three standard deviations, the
// lower bound used wherever ratings are compared or displayed.
func (s *RiderSkill) ConservativeRating() float64 {
	return CalculateElo(s.Mean, s.Variance)
}

// CalculateElo converts a skill distribution into a single conservative
// rating: mean - 3*sqrt(variance).
func CalculateElo(mean, variance float64) float64 {
	return mean - 3.0*math.Sqrt(variance)
}
