// Package form converts a rider's recent race history into a
// time-decayed performance signal, independent of the long-run skill
// rating.
package form

import (
	"math"
	"sort"
	"time"

	"github.com/yourusername/veloform/internal/models"
)

const (
	// windowDays bounds how far back results count towards form.
	windowDays = 90

	// halfLifeDays controls the exponential recency decay: a result
	// three weeks old carries half the weight of one today.
	halfLifeDays = 21.0

	// trendThreshold is the recent-vs-older performance gap needed to
	// call a trend.
	trendThreshold = 0.15

	dnfScore = -0.5
)

type scoredResult struct {
	result models.RecentResult
	score  float64
	weight float64
}

// CalculateForm computes a FormScore from the rider's recent results as
// of referenceDate. Results in the future or older than the 90-day
// window are excluded; malformed entries are skipped individually.
func CalculateForm(results []models.RecentResult, referenceDate time.Time) models.FormScore {
	score := models.FormScore{
		ByProfile: make(map[models.ProfileType]float64),
		Trend:     models.TrendStable,
	}

	windowed := make([]scoredResult, 0, len(results))
	for _, r := range results {
		if r.Date.After(referenceDate) {
			continue
		}
		if r.Position == nil && !r.DNF {
			continue
		}
		if score.LastRaceDate == nil || r.Date.After(*score.LastRaceDate) {
			d := r.Date
			score.LastRaceDate = &d
		}

		daysSince := referenceDate.Sub(r.Date).Hours() / 24.0
		if daysSince > windowDays {
			continue
		}
		windowed = append(windowed, scoredResult{
			result: r,
			score:  performanceScore(r),
			weight: math.Pow(0.5, daysSince/halfLifeDays) * r.RaceWeight,
		})
	}

	score.RacesCount = len(windowed)
	if len(windowed) == 0 {
		return score
	}

	score.Overall = weightedAverage(windowed, nil)
	for _, profile := range profilesPresent(windowed) {
		p := profile
		score.ByProfile[p] = weightedAverage(windowed, func(r models.RecentResult) bool {
			return r.ProfileType == p
		})
	}
	score.Trend = calculateTrend(windowed)
	return score
}

// FormMultiplier maps a form score in [-1,1] onto a [0.8,1.2] scaling
// factor for the final prediction score.
func FormMultiplier(score float64) float64 {
	return 1.0 + clamp(score, -1, 1)*0.2
}

// performanceScore maps a finishing position onto [-1,1]. Podium and
// top placings use fixed anchors; the long tail falls back to a linear
// map of normalized position.
func performanceScore(r models.RecentResult) float64 {
	if r.DNF {
		return dnfScore
	}
	pos := *r.Position
	switch {
	case pos == 1:
		return 1.0
	case pos == 2:
		return 0.8
	case pos == 3:
		return 0.65
	case pos <= 5:
		return 0.5
	case pos <= 10:
		return 0.35
	case pos <= 20:
		return 0.2
	}

	fieldSize := r.FieldSize
	if fieldSize < pos {
		fieldSize = pos
	}
	normalized := float64(pos-1) / float64(fieldSize-1)
	return clamp(1.0-2.0*normalized, -1, 1)
}

func weightedAverage(results []scoredResult, include func(models.RecentResult) bool) float64 {
	var sum, weightSum float64
	for _, r := range results {
		if include != nil && !include(r.result) {
			continue
		}
		sum += r.score * r.weight
		weightSum += r.weight
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

func profilesPresent(results []scoredResult) []models.ProfileType {
	seen := make(map[models.ProfileType]bool)
	profiles := make([]models.ProfileType, 0, 4)
	for _, r := range results {
		p := r.result.ProfileType
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		profiles = append(profiles, p)
	}
	return profiles
}

// calculateTrend splits results by recency at the midpoint and compares
// the average raw performance of the two halves.
func calculateTrend(results []scoredResult) models.FormTrend {
	if len(results) < 2 {
		return models.TrendStable
	}
	sorted := make([]scoredResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].result.Date.After(sorted[j].result.Date)
	})

	mid := len(sorted) / 2
	recent := averageScore(sorted[:mid])
	older := averageScore(sorted[mid:])

	diff := recent - older
	switch {
	case diff > trendThreshold:
		return models.TrendImproving
	case diff < -trendThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func averageScore(results []scoredResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.score
	}
	return sum / float64(len(results))
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
