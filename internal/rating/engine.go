// Package rating implements a TrueSkill-style Bayesian skill rating
// system over race finishing orders. Each rider carries a belief
// distribution {mean, variance}; finished races update it through
// pairwise truncated-Gaussian winner/loser comparisons.
package rating

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/yourusername/veloform/internal/models"
)

const (
	// Fields at or below this size get the exhaustive pairwise update.
	smallFieldLimit = 30

	// Larger fields are approximated by random sub-groups so cost stays
	// bounded regardless of field size.
	subGroupSize  = 30
	subGroupCount = 100
)

// Engine performs skill updates over race results. It holds no state
// besides its sampler; the skill table is borrowed from the caller for
// the duration of one call.
type Engine struct {
	sampler Sampler
}

// Option configures an Engine.
type Option func(*Engine)

// WithSampler injects the sub-group sampling strategy. Tests pass a
// seeded sampler for reproducible large-field runs.
func WithSampler(s Sampler) Option {
	return func(e *Engine) { e.sampler = s }
}

// NewEngine creates a rating engine. Without options it uses a
// time-seeded sampler.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.sampler == nil {
		e.sampler = NewSampler(0)
	}
	return e
}

// CreateInitialSkill returns the default prior for an unrated rider.
func (e *Engine) CreateInitialSkill(riderID uuid.UUID) *models.RiderSkill {
	return models.NewRiderSkill(riderID)
}

// UpdateStats reports the comparison work a field of n classified
// finishers costs: the pairwise comparisons run and the number of
// sub-group batches (zero for small fields).
func UpdateStats(n int) (pairwise int, subGroupBatches int) {
	if n <= smallFieldLimit {
		return n * (n - 1) / 2, 0
	}
	return subGroupCount * subGroupSize * (subGroupSize - 1) / 2, subGroupCount
}

// workingSkill tracks one finisher's distribution through a race update.
type workingSkill struct {
	riderID  uuid.UUID
	position int
	oldMean  float64
	oldVar   float64
	mean     float64
	variance float64
}

// ProcessRace applies the finishing order in results to the supplied
// skill table and returns one SkillUpdate per classified finisher.
//
// DNF and unpositioned riders are excluded from comparisons. Riders
// missing from skills are initialized at the default prior rather than
// rejected. Fewer than two classified finishers yields an empty update
// list and leaves skills untouched.
func (e *Engine) ProcessRace(results []models.RaceResult, skills map[uuid.UUID]*models.RiderSkill) []models.SkillUpdate {
	finishers := collectFinishers(results, skills)
	if len(finishers) < 2 {
		return []models.SkillUpdate{}
	}

	if len(finishers) <= smallFieldLimit {
		e.updateSmallField(finishers)
	} else {
		e.updateLargeField(finishers)
	}

	updates := make([]models.SkillUpdate, 0, len(finishers))
	for _, w := range finishers {
		skill, ok := skills[w.riderID]
		if !ok {
			skill = models.NewRiderSkill(w.riderID)
			skills[w.riderID] = skill
		}
		skill.Mean = w.mean
		skill.Variance = w.variance
		skill.RacesTotal++
		updates = append(updates, models.NewSkillUpdate(w.riderID, w.oldMean, w.oldVar, w.mean, w.variance))
	}
	return updates
}

// collectFinishers filters to classified finishers, resolves their
// current distributions and sorts them by finishing position. Malformed
// or duplicate entries are skipped individually, never fatal.
func collectFinishers(results []models.RaceResult, skills map[uuid.UUID]*models.RiderSkill) []*workingSkill {
	seen := make(map[uuid.UUID]bool, len(results))
	finishers := make([]*workingSkill, 0, len(results))
	for i := range results {
		r := &results[i]
		if !r.Finished() || r.RiderID == uuid.Nil || seen[r.RiderID] {
			continue
		}
		seen[r.RiderID] = true

		mean, variance := models.InitialMean, models.InitialVariance
		if skill, ok := skills[r.RiderID]; ok && skill != nil && skill.Variance > 0 {
			mean, variance = skill.Mean, skill.Variance
		}
		finishers = append(finishers, &workingSkill{
			riderID:  r.RiderID,
			position: *r.Position,
			oldMean:  mean,
			oldVar:   variance,
			mean:     mean,
			variance: variance,
		})
	}
	sort.SliceStable(finishers, func(i, j int) bool {
		return finishers[i].position < finishers[j].position
	})
	return finishers
}

// updateSmallField runs every winner/loser pair exactly once, applying
// updates in place as it goes.
func (e *Engine) updateSmallField(finishers []*workingSkill) {
	for i := 0; i < len(finishers); i++ {
		for j := i + 1; j < len(finishers); j++ {
			pairwiseUpdate(finishers[i], finishers[j])
		}
	}
}

// updateLargeField approximates the exhaustive update by running the
// full pairwise pass inside subGroupCount random groups of subGroupSize
// riders, each starting from the pre-race distributions, then averaging
// every rider's accumulated delta across the groups it appeared in and
// applying it once. This keeps cost independent of field size while
// preserving the expected update magnitude.
func (e *Engine) updateLargeField(finishers []*workingSkill) {
	type accum struct {
		meanDelta float64
		varDelta  float64
		count     int
	}
	accums := make([]accum, len(finishers))

	for batch := 0; batch < subGroupCount; batch++ {
		indices := e.sampler.SubGroup(len(finishers), subGroupSize)
		// Re-sort so the sub-group keeps the original finish order.
		sort.Ints(indices)

		group := make([]*workingSkill, len(indices))
		for k, idx := range indices {
			f := finishers[idx]
			group[k] = &workingSkill{
				riderID:  f.riderID,
				position: f.position,
				mean:     f.oldMean,
				variance: f.oldVar,
			}
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				pairwiseUpdate(group[i], group[j])
			}
		}
		for k, idx := range indices {
			accums[idx].meanDelta += group[k].mean - finishers[idx].oldMean
			accums[idx].varDelta += group[k].variance - finishers[idx].oldVar
			accums[idx].count++
		}
	}

	for i, f := range finishers {
		if accums[i].count == 0 {
			continue
		}
		n := float64(accums[i].count)
		f.mean = f.oldMean + accums[i].meanDelta/n
		f.variance = math.Max(models.TauSquared, f.oldVar+accums[i].varDelta/n)
	}
}

// pairwiseUpdate applies the truncated-Gaussian winner/loser adjustment.
// Racing has no draws, so the draw margin is zero.
func pairwiseUpdate(winner, loser *workingSkill) {
	c2 := 2*models.BetaSquared + winner.variance + loser.variance
	c := math.Sqrt(c2)
	t := (winner.mean - loser.mean) / c

	v := truncGaussianV(t)
	w := v * (v + t)

	winner.mean += winner.variance / c * v
	loser.mean -= loser.variance / c * v

	winner.variance = floorVariance(winner.variance * (1 - w*winner.variance/c2))
	loser.variance = floorVariance(loser.variance * (1 - w*loser.variance/c2))
}

// truncGaussianV computes phi(t)/Phi(t), the mean additive correction
// for a Gaussian truncated below at -t. For deeply negative t the
// denominator underflows; the asymptotic value -t is used instead.
func truncGaussianV(t float64) float64 {
	denom := normCDF(t)
	if denom < 1e-10 {
		return -t
	}
	return normPDF(t) / denom
}

// floorVariance keeps variance strictly positive. It is never allowed
// below TauSquared.
func floorVariance(v float64) float64 {
	if v < models.TauSquared {
		return models.TauSquared
	}
	return v
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
