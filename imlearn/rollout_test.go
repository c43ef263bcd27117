package imlearn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollout_NoExpert_FiveSteps(t *testing.T) {
	// GIVEN a system that never terminates and a policy that outputs 1
	sys := &stubSystem{}
	engine := NewEngine(1, nil)

	// WHEN rolling out T=5, N=1 with no expert
	result, err := engine.Rollout(sys, constantPolicy(1), 5, 1, nil, 0, false)
	require.NoError(t, err)

	// THEN exactly 5 records exist, each with target == action == 1
	d := result.Data
	assert.Equal(t, 5, d.Len())
	for i := 0; i < 5; i++ {
		assert.Equal(t, []float64{1}, d.Targets[i])
		assert.Equal(t, []float64{1}, d.Actions[i])
	}
	assert.Equal(t, []float64{5}, result.EpisodeRewards)
}

func TestRollout_NoExpert_MixingIgnored(t *testing.T) {
	// GIVEN no expert but a nonzero mixing probability
	sys := &stubSystem{}
	engine := NewEngine(1, nil)

	// WHEN rolling out with mixing 1.0
	result, err := engine.Rollout(sys, constantPolicy(3), 4, 2, nil, 1.0, true)
	require.NoError(t, err)

	// THEN every target equals the learner action
	for i := range result.Data.Targets {
		assert.Equal(t, result.Data.Actions[i], result.Data.Targets[i])
	}
	// and every wait reported autonomous operation
	assert.Equal(t, []bool{true, true}, sys.waits)
}

func TestRollout_ExpertForced_PerTimestep(t *testing.T) {
	// GIVEN an expert that outputs 9 and a learner that outputs 1
	sys := &stubSystem{}
	expert := &stubExpert{action: Action{9}}
	engine := NewEngine(1, nil)

	// WHEN rolling out with mixing probability 1.0, per-timestep mixing
	result, err := engine.Rollout(sys, constantPolicy(1), 5, 2, expert, 1.0, true)
	require.NoError(t, err)

	// THEN every recorded target is the expert's action and the learner's
	// candidate is still recorded alongside
	require.Equal(t, 10, result.Data.Len())
	for i := 0; i < result.Data.Len(); i++ {
		assert.Equal(t, []float64{9}, result.Data.Targets[i])
		assert.Equal(t, []float64{1}, result.Data.Actions[i])
	}
	// and the system only ever saw expert actions
	for _, a := range sys.actions {
		assert.Equal(t, Action{9}, a)
	}
}

func TestRollout_MixingZero_AllLearner(t *testing.T) {
	sys := &stubSystem{}
	expert := &stubExpert{action: Action{9}}
	engine := NewEngine(1, nil)

	result, err := engine.Rollout(sys, constantPolicy(1), 5, 2, expert, 0, true)
	require.NoError(t, err)

	for i := 0; i < result.Data.Len(); i++ {
		assert.Equal(t, []float64{1}, result.Data.Targets[i])
	}
}

func TestRollout_DoneTruncatesEpisode(t *testing.T) {
	// GIVEN a system that terminates on its third step
	sys := &stubSystem{doneAfter: 3}
	engine := NewEngine(1, nil)

	// WHEN rolling out T=10, N=2
	result, err := engine.Rollout(sys, constantPolicy(1), 10, 2, nil, 0, false)
	require.NoError(t, err)

	// THEN only the 2 pre-terminal steps per episode are recorded
	assert.Equal(t, 4, result.Data.Len())
	// and the terminal step's reward is discarded with the record
	assert.Equal(t, []float64{2, 2}, result.EpisodeRewards)
}

func TestRollout_AutonomousFlag_NonAutonomousExpert(t *testing.T) {
	// GIVEN a non-autonomous expert forced to drive every episode
	sys := &stubSystem{}
	expert := &stubExpert{action: Action{9}, autonomous: false}
	engine := NewEngine(1, nil)

	// WHEN rolling out with mixing 1.0 at rollout granularity
	_, err := engine.Rollout(sys, constantPolicy(1), 2, 3, expert, 1.0, false)
	require.NoError(t, err)

	// THEN every wait saw autonomous == false
	assert.Equal(t, []bool{false, false, false}, sys.waits)
}

func TestRollout_AlignmentInvariant(t *testing.T) {
	sys := &stubSystem{doneAfter: 4}
	expert := &stubExpert{action: Action{9}}
	engine := NewEngine(3, nil)

	result, err := engine.Rollout(sys, constantPolicy(1), 6, 3, expert, 0.5, true)
	require.NoError(t, err)
	assertAligned(t, result.Data)
}

func TestRollout_ZeroEpisodes(t *testing.T) {
	sys := &stubSystem{}
	engine := NewEngine(1, nil)

	result, err := engine.Rollout(sys, constantPolicy(1), 5, 0, nil, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Data.Len())
	assert.Empty(t, result.EpisodeRewards)
	assert.Empty(t, sys.waits)
}
