package imlearn

// Observation is one timestep of sensor data: a mapping from field name to
// that field's numeric value vector. Fields are heterogeneous in dimension
// but a given field keeps the same dimension across a run.
type Observation map[string][]float64

// Action is a control command vector sent to the System.
type Action []float64

// Clone returns a deep copy of the action.
func (a Action) Clone() Action {
	if a == nil {
		return nil
	}
	out := make(Action, len(a))
	copy(out, a)
	return out
}

// Policy maps an observation to an action. It is the opaque capability a
// Learner hands out; no structure beyond the call is assumed.
type Policy func(obs Observation) (Action, error)

// ControlSource identifies who drives the System for a decision point.
type ControlSource int

const (
	// SourceLearner means the learner's policy output is executed.
	SourceLearner ControlSource = iota
	// SourceExpert means the expert's action is executed.
	SourceExpert
)

func (s ControlSource) String() string {
	if s == SourceExpert {
		return "expert"
	}
	return "learner"
}
