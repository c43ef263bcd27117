package imlearn

import (
	"gonum.org/v1/gonum/stat"
)

// Evaluation bundles the outputs of a held-out policy test: the recorded
// trace, the per-episode reward totals, and their aggregate statistics.
type Evaluation struct {
	Data           *Dataset
	EpisodeRewards []float64
	MeanReward     float64
	RewardVariance float64 // population variance over episode totals
}

// Evaluate runs episodes pure-policy rollouts (no expert, no mixing) of up
// to timesteps steps each and reports the mean and population variance of
// the per-episode reward totals.
func (e *Engine) Evaluate(sys System, policy Policy, timesteps, episodes int) (*Evaluation, error) {
	e.logger.Infof("evaluating with %d rollouts of %d timesteps", episodes, timesteps)
	result, err := e.Rollout(sys, policy, timesteps, episodes, nil, 0, false)
	if err != nil {
		return nil, err
	}
	ev := &Evaluation{
		Data:           result.Data,
		EpisodeRewards: result.EpisodeRewards,
	}
	if len(result.EpisodeRewards) > 0 {
		ev.MeanReward = stat.Mean(result.EpisodeRewards, nil)
		ev.RewardVariance = stat.PopVariance(result.EpisodeRewards, nil)
	}
	e.logger.Infof("reward mean %.4f variance %.4f over %d rollouts",
		ev.MeanReward, ev.RewardVariance, len(result.EpisodeRewards))
	return ev, nil
}

// PolicyFromExpert adapts an Expert so the evaluation harness can test it
// like any other policy.
func PolicyFromExpert(expert Expert) Policy {
	return func(obs Observation) (Action, error) {
		return expert.Action(obs)
	}
}
