package imlearn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseSource_Extremes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		assert.Equal(t, SourceLearner, chooseSource(rng, 0.0))
		assert.Equal(t, SourceExpert, chooseSource(rng, 1.0))
	}
}

func TestChooseSource_FrequencyTracksProbability(t *testing.T) {
	// GIVEN a seeded generator and mixing probability 0.3
	rng := rand.New(rand.NewSource(7))
	const draws = 10000

	// WHEN drawing many independent decisions
	expert := 0
	for i := 0; i < draws; i++ {
		if chooseSource(rng, 0.3) == SourceExpert {
			expert++
		}
	}

	// THEN the expert share is close to the probability
	share := float64(expert) / draws
	assert.InDelta(t, 0.3, share, 0.02)
}

func TestControlSource_String(t *testing.T) {
	assert.Equal(t, "learner", SourceLearner.String())
	assert.Equal(t, "expert", SourceExpert.String())
}
