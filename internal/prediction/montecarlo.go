package prediction

import (
	"math"
	"sort"

	"github.com/yourusername/veloform/internal/models"
)

type probEstimate struct {
	win    float64
	podium float64
	top10  float64
}

// runMonteCarlo estimates finish probabilities from one shared batch of
// trials. Each trial samples a performance for every rider from
// N(mean, variance + beta^2), ranks the field once, and increments the
// rank counters. Sharing the batch keeps cost O(fieldSize * trials)
// instead of simulating each rider separately.
func (e *Engine) runMonteCarlo(inputs []models.RiderPredictionInput) []probEstimate {
	n := len(inputs)

	perfStdDev := make([]float64, n)
	for i, in := range inputs {
		variance := in.SkillVariance
		if variance <= 0 {
			variance = models.InitialVariance
		}
		perfStdDev[i] = math.Sqrt(variance + models.BetaSquared)
	}

	wins := make([]int, n)
	podiums := make([]int, n)
	top10s := make([]int, n)

	performances := make([]float64, n)
	order := make([]int, n)

	for trial := 0; trial < e.trials; trial++ {
		for i, in := range inputs {
			performances[i] = in.SkillMean + perfStdDev[i]*e.rng.NormFloat64()
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return performances[order[a]] > performances[order[b]]
		})
		for rank, idx := range order {
			if rank == 0 {
				wins[idx]++
			}
			if rank < 3 {
				podiums[idx]++
			}
			if rank < 10 {
				top10s[idx]++
			}
		}
	}

	trials := float64(e.trials)
	estimates := make([]probEstimate, n)
	for i := range estimates {
		estimates[i] = probEstimate{
			win:    float64(wins[i]) / trials,
			podium: float64(podiums[i]) / trials,
			top10:  float64(top10s[i]) / trials,
		}
	}
	return estimates
}
