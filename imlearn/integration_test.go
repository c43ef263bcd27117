package imlearn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ACDSLab/imitation-learning/imlearn"
	"github.com/ACDSLab/imitation-learning/imlearn/learner"
	"github.com/ACDSLab/imitation-learning/imlearn/pointmass"
)

// The PD expert's control law is linear in the observed state, so the
// linear learner can represent it and DAgger should hand back a policy
// that stabilizes the point mass on its own.
func TestDagger_LearnsToStabilizePointMass(t *testing.T) {
	sys := pointmass.NewSystem(11)
	expert := pointmass.NewExpert()
	lrn, err := learner.NewLinear([]learner.Field{
		{Name: pointmass.FieldPosition, Dim: 1},
		{Name: pointmass.FieldVelocity, Dim: 1},
	}, 1, nil)
	require.NoError(t, err)

	cfg := imlearn.Config{
		Timesteps:        200,
		Rollouts:         3,
		Iterations:       2,
		MixingRate:       0.5,
		MixWithinRollout: true,
		Seed:             11,
		Pretrain:         true,
	}
	trainer, err := imlearn.NewTrainer(cfg, sys, expert, lrn, nil)
	require.NoError(t, err)
	result, err := trainer.Run()
	require.NoError(t, err)

	// Dataset: 600 pretrain samples plus up to 600 per iteration; episodes
	// may truncate on divergence but the aligned invariant must hold.
	require.NotZero(t, result.Data.Len())
	n := result.Data.Len()
	for _, f := range result.Data.Fields() {
		assert.Len(t, result.Data.Observations[f], n)
	}
	assert.Len(t, result.Data.Targets, n)

	// The learned policy stabilizes the system without any expert help.
	obs, err := sys.WaitForRollout(true)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		action, err := result.Policy(obs)
		require.NoError(t, err)
		var done bool
		obs, _, done, err = sys.Step(action)
		require.NoError(t, err)
		require.False(t, done, "learned policy diverged at step %d", i)
	}
	assert.Less(t, math.Abs(obs[pointmass.FieldPosition][0]), 0.1)
	assert.Less(t, math.Abs(obs[pointmass.FieldVelocity][0]), 0.1)
}
