package rating

import (
	"math"

	"github.com/yourusername/veloform/internal/models"
)

// ApplyDynamics returns a copy of skill with variance inflated for
// inactivity: tau^2 per 30 days without racing, saturating at five
// months and never exceeding the unrated prior variance. The mean is
// unchanged.
//
// Inflation is computed from the variance as of the last race, not the
// current variance, so applying dynamics repeatedly over the same
// inactive stretch converges on one target instead of compounding.
func (e *Engine) ApplyDynamics(skill *models.RiderSkill, daysSinceLastRace int) *models.RiderSkill {
	updated := *skill
	if updated.BaseVariance == 0 {
		// No recorded baseline, adopt the current variance as one.
		updated.BaseVariance = skill.Variance
	}
	if daysSinceLastRace <= 0 {
		return &updated
	}

	months := math.Min(float64(daysSinceLastRace)/30.0, 5.0)
	updated.Variance = math.Min(models.InitialVariance, updated.BaseVariance+models.TauSquared*months)
	return &updated
}
