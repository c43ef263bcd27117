package imlearn

// System is the plant being driven: a physical rig or a simulation. Calls
// are synchronous; WaitForRollout blocks until the system is ready to start
// an episode.
type System interface {
	// WaitForRollout blocks until the system can begin an episode and
	// returns the initial observation. autonomous reports whether the
	// upcoming episode runs without a human supervisor in the loop.
	WaitForRollout(autonomous bool) (Observation, error)

	// Step applies the action and returns the resulting observation, the
	// scalar reward for the transition, and whether the episode terminated.
	Step(action Action) (Observation, float64, bool, error)
}

// Expert is the supervising controller queried for reference actions during
// mixed rollouts and pretraining.
type Expert interface {
	// Action returns the expert's control command for the observation.
	Action(obs Observation) (Action, error)

	// Autonomous reports whether the expert operates the system without
	// human supervision. It feeds into the System's WaitForRollout call.
	Autonomous() bool
}

// StatusExpert is an optional richer expert exposing health and cost
// telemetry. The training loop itself never calls these.
type StatusExpert interface {
	Expert

	// Ready reports whether the expert is able to produce actions.
	Ready() bool

	// Cost returns the expert's most recent internal cost estimate.
	Cost() float64
}

// FitOptions carries implementation-specific fitting parameters passed
// through to the Learner untouched.
type FitOptions map[string]any

// Learner is the trainable model. Implementations own their numerical
// details entirely; the trainer only ever fits, asks for a policy, and saves.
// Loading is a package-level constructor on the implementation (see
// imlearn/learner.Load).
type Learner interface {
	// Fit trains on the aligned per-field observation sequences and their
	// target actions.
	Fit(observations map[string][][]float64, targets []Action, opts FitOptions) error

	// GetPolicy returns a policy closure over the current model state. The
	// trainer calls this again after every refit.
	GetPolicy() (Policy, error)

	// Save writes the model under name (no extension) inside dir.
	Save(dir, name string) error
}
