package rating

import (
	"math/rand"
	"time"
)

// Sampler selects random sub-groups of finisher indices for large-field
// updates. It is an injectable strategy so tests can seed it for
// reproducible runs while production uses a fast PRNG.
type Sampler interface {
	// SubGroup returns k distinct indices drawn from [0, n). When k >= n
	// it returns all n indices.
	SubGroup(n, k int) []int
}

type randSampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler backed by math/rand with the given seed.
// A zero seed is replaced by the current time, matching production use
// where cross-run determinism is not required.
func NewSampler(seed int64) Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSampler{rng: rand.New(rand.NewSource(seed))}
}

// SubGroup draws k distinct indices via a partial Fisher-Yates shuffle.
func (s *randSampler) SubGroup(n, k int) []int {
	if k > n {
		k = n
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices[:k]
}
