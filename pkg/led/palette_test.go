package led

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick_ThreeDistinct(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		colors := Pick(rand.New(rand.NewSource(seed)), 3)

		assert.Len(t, colors, 3)
		seen := map[RGB]bool{}
		for _, c := range colors {
			assert.True(t, isPaletteColor(c), "seed %d: %v not in palette", seed, c)
			assert.False(t, seen[c], "seed %d: %v repeated", seed, c)
			seen[c] = true
		}
	}
}

func TestPick_Deterministic(t *testing.T) {
	a := Pick(rand.New(rand.NewSource(42)), 3)
	b := Pick(rand.New(rand.NewSource(42)), 3)
	assert.Equal(t, a, b)
}

func TestPick_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	assert.Nil(t, Pick(rng, 0))
	assert.Nil(t, Pick(rng, -1))

	all := Pick(rng, 100)
	assert.Len(t, all, len(Palette))
	assert.ElementsMatch(t, Palette[:], all)
}
