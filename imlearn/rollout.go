package imlearn

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Engine drives episodes against a System and records the trace. It owns
// the single random generator behind every mixing decision, so a fixed seed
// reproduces the same expert/learner interleaving.
type Engine struct {
	rng    *rand.Rand
	logger *logrus.Entry
}

// NewEngine creates an Engine seeded for reproducible mixing draws. A nil
// logger falls back to the standard logrus logger.
func NewEngine(seed int64, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.WithField("component", "rollout"),
	}
}

// RolloutResult bundles the recorded trace with per-episode reward totals.
// EpisodeRewards has one entry per episode, the sum of that episode's
// recorded per-timestep rewards.
type RolloutResult struct {
	Data           *Dataset
	EpisodeRewards []float64
}

// Rollout performs episodes rollouts of up to timesteps steps each,
// recording one trajectory record per retained timestep.
//
// With a nil expert every action comes from policy and mixing is ignored.
// With an expert, the control source is drawn once per episode, or re-drawn
// every timestep when mixWithinRollout is set. The episode-level draw also
// decides the autonomous flag passed to WaitForRollout: autonomous when the
// learner drives, or when the expert reports itself autonomous; per-timestep
// draws never change that flag mid-episode.
//
// A done flag from Step ends the episode immediately; the terminal step is
// not recorded, so the returned dataset never holds partial records.
func (e *Engine) Rollout(sys System, policy Policy, timesteps, episodes int, expert Expert, mixing float64, mixWithinRollout bool) (*RolloutResult, error) {
	result := &RolloutResult{
		Data:           NewDataset(WithDatasetLogger(e.logger)),
		EpisodeRewards: make([]float64, 0, episodes),
	}

	mix := expert != nil && mixing > 0
	for ep := 0; ep < episodes; ep++ {
		e.logger.Infof("waiting for rollout %d", ep)
		source := SourceLearner
		if mix {
			source = chooseSource(e.rng, mixing)
		}
		autonomous := source == SourceLearner || expert.Autonomous()
		obs, err := sys.WaitForRollout(autonomous)
		if err != nil {
			return nil, fmt.Errorf("rollout %d: wait for system: %w", ep, err)
		}
		if mix && mixWithinRollout {
			e.logger.Infof("start mixed rollout %d", ep)
		} else {
			e.logger.Infof("start rollout %d driven by %s", ep, source)
		}

		total := 0.0
		for t := 0; t < timesteps; t++ {
			if mix && mixWithinRollout {
				source = chooseSource(e.rng, mixing)
			}
			action, err := policy(obs)
			if err != nil {
				return nil, fmt.Errorf("rollout %d step %d: policy: %w", ep, t, err)
			}
			target := action
			if expert != nil {
				expertAction, err := expert.Action(obs)
				if err != nil {
					return nil, fmt.Errorf("rollout %d step %d: expert: %w", ep, t, err)
				}
				if source == SourceExpert {
					target = expertAction
				}
			}
			next, reward, done, err := sys.Step(target)
			if err != nil {
				return nil, fmt.Errorf("rollout %d step %d: system step: %w", ep, t, err)
			}
			if done {
				break
			}
			if err := result.Data.Append(next, target, action, reward); err != nil {
				return nil, fmt.Errorf("rollout %d step %d: %w", ep, t, err)
			}
			total += reward
			obs = next
		}
		result.EpisodeRewards = append(result.EpisodeRewards, total)
		e.logger.Infof("completed rollout %d, reward %.4f", ep, total)
	}
	return result, nil
}
