package imlearn

import "math/rand"

// chooseSource draws one uniform sample in [0,1) and returns the control
// source for a single decision point: the expert drives when the sample
// falls below mixing, so a higher mixing probability means more expert
// participation. Each decision point gets a fresh, independent draw.
func chooseSource(rng *rand.Rand, mixing float64) ControlSource {
	if rng.Float64() < mixing {
		return SourceExpert
	}
	return SourceLearner
}
