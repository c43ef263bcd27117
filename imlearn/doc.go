// Package imlearn implements the DAgger imitation-learning training loop:
// policy rollouts with stochastic expert/learner mixing, cumulative dataset
// aggregation, and iterative learner refitting.
//
// # Reading Guide
//
// Start with these three files to understand the training kernel:
//   - rollout.go: the rollout engine — drives episodes, picks the control
//     source per episode or per timestep, records the trace
//   - dataset.go: the aligned per-field dataset and its accumulator
//   - dagger.go: the Trainer — pretraining, the iteration loop, refitting,
//     evaluation checkpoints, persistence
//
// # Architecture
//
// The package defines capability interfaces; implementations live elsewhere:
//   - System: the physical or simulated plant being driven (see
//     imlearn/pointmass for a built-in simulated one)
//   - Expert: the supervising controller queried for reference actions
//   - Learner: the trainable model (see imlearn/learner for a linear
//     least-squares implementation)
//
// All randomness in mixing decisions flows through a single *rand.Rand owned
// by the Engine, so runs are reproducible from a seed.
package imlearn
