// Package pointmass provides a built-in simulated System for the training
// loop: a 1-D double integrator a policy must drive to the origin, plus a
// PD-controller Expert that solves it. Used by the CLI and by integration
// tests; real deployments swap in their own System and Expert.
package pointmass

import (
	"math"
	"math/rand"

	"github.com/ACDSLab/imitation-learning/imlearn"
)

// Observation field names exposed by the system.
const (
	FieldPosition = "position"
	FieldVelocity = "velocity"
)

// System is a discrete-time double integrator. Each episode starts from a
// random position in [-StartRange, StartRange] with zero velocity; the
// episode terminates when the state diverges past Bound.
type System struct {
	Dt         float64 // integration timestep
	Bound      float64 // |position| beyond which the episode is done
	StartRange float64 // initial position magnitude

	rng *rand.Rand
	x   float64
	v   float64
}

// NewSystem creates a system with the given reset seed and default
// dynamics (dt 0.05, bound 10, start range 2).
func NewSystem(seed int64) *System {
	return &System{
		Dt:         0.05,
		Bound:      10,
		StartRange: 2,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// WaitForRollout resets the state and returns the initial observation. The
// simulation is always ready, so it never actually blocks; the autonomous
// flag only matters for systems with a human supervisor.
func (s *System) WaitForRollout(autonomous bool) (imlearn.Observation, error) {
	s.x = s.rng.Float64()*2*s.StartRange - s.StartRange
	s.v = 0
	return s.observe(), nil
}

// Step applies the scalar force in action[0] for one timestep. The reward
// is the negative quadratic cost of state and control.
func (s *System) Step(action imlearn.Action) (imlearn.Observation, float64, bool, error) {
	force := 0.0
	if len(action) > 0 {
		force = action[0]
	}
	s.v += force * s.Dt
	s.x += s.v * s.Dt
	reward := -(s.x*s.x + 0.1*s.v*s.v + 0.01*force*force)
	done := math.Abs(s.x) > s.Bound
	return s.observe(), reward, done, nil
}

func (s *System) observe() imlearn.Observation {
	return imlearn.Observation{
		FieldPosition: []float64{s.x},
		FieldVelocity: []float64{s.v},
	}
}

// Expert is a PD controller that stabilizes the double integrator. It
// implements imlearn.StatusExpert.
type Expert struct {
	Kp   float64
	Kd   float64
	cost float64
}

// NewExpert returns a PD expert with stabilizing default gains.
func NewExpert() *Expert {
	return &Expert{Kp: 4, Kd: 3}
}

// Action returns the PD control for the observed state.
func (e *Expert) Action(obs imlearn.Observation) (imlearn.Action, error) {
	pos, ok := obs[FieldPosition]
	if !ok || len(pos) == 0 {
		return nil, &imlearn.MissingFieldError{Field: FieldPosition, Phase: "predict"}
	}
	vel, ok := obs[FieldVelocity]
	if !ok || len(vel) == 0 {
		return nil, &imlearn.MissingFieldError{Field: FieldVelocity, Phase: "predict"}
	}
	e.cost = pos[0]*pos[0] + 0.1*vel[0]*vel[0]
	return imlearn.Action{-e.Kp*pos[0] - e.Kd*vel[0]}, nil
}

// Autonomous reports that the controller runs without supervision.
func (e *Expert) Autonomous() bool { return true }

// Ready reports whether the expert can produce actions.
func (e *Expert) Ready() bool { return true }

// Cost returns the quadratic state cost of the last observation acted on.
func (e *Expert) Cost() float64 { return e.cost }
