package prediction

import "math"

const (
	affinityScale    = 0.3
	affinityFullSize = 10.0
	profileMultMin   = 0.7
	profileMultMax   = 1.3
)

// ProfileMultiplier maps a rider's affinity for the race profile onto a
// [0.7, 1.3] scaling factor. Affinity is expected in [-1, 1]; sparse
// sample counts shrink the adjustment towards neutral, full weight from
// ten observed races on the profile.
func ProfileMultiplier(affinity float64, samples int) float64 {
	if samples <= 0 {
		return 1.0
	}
	weight := math.Min(float64(samples)/affinityFullSize, 1.0)
	mult := 1.0 + clamp(affinity, -1, 1)*affinityScale*weight
	return clamp(mult, profileMultMin, profileMultMax)
}
