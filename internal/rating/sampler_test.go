package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerSubGroupDistinctAndInRange(t *testing.T) {
	sampler := NewSampler(1)

	for trial := 0; trial < 20; trial++ {
		group := sampler.SubGroup(80, 30)
		require.Len(t, group, 30)

		seen := make(map[int]bool, len(group))
		for _, idx := range group {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 80)
			assert.False(t, seen[idx], "index drawn twice")
			seen[idx] = true
		}
	}
}

func TestSamplerSubGroupWholeField(t *testing.T) {
	sampler := NewSampler(1)
	group := sampler.SubGroup(10, 30)
	assert.Len(t, group, 10)
}

func TestSamplerDeterministicWithSeed(t *testing.T) {
	first := NewSampler(42).SubGroup(100, 30)
	second := NewSampler(42).SubGroup(100, 30)
	assert.Equal(t, first, second)
}
