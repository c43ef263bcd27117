package imlearn

// Shared stubs for rollout, evaluation, and trainer tests.

// stubSystem is an in-memory System that counts in-episode steps and
// reports position as the step index.
type stubSystem struct {
	doneAfter int       // in-episode step count that returns done; 0 = never
	rewards   []float64 // per-step rewards within an episode; empty = always 1

	epStep  int
	waits   []bool   // autonomous flags seen by WaitForRollout
	actions []Action // every action received by Step
}

func (s *stubSystem) WaitForRollout(autonomous bool) (Observation, error) {
	s.waits = append(s.waits, autonomous)
	s.epStep = 0
	return Observation{"pos": []float64{0}}, nil
}

func (s *stubSystem) Step(action Action) (Observation, float64, bool, error) {
	s.actions = append(s.actions, action.Clone())
	s.epStep++
	reward := 1.0
	if len(s.rewards) >= s.epStep {
		reward = s.rewards[s.epStep-1]
	}
	done := s.doneAfter > 0 && s.epStep >= s.doneAfter
	return Observation{"pos": []float64{float64(s.epStep)}}, reward, done, nil
}

// stubExpert returns a fixed action and a configurable autonomy flag.
type stubExpert struct {
	action     Action
	autonomous bool
	calls      int
}

func (e *stubExpert) Action(obs Observation) (Action, error) {
	e.calls++
	return e.action.Clone(), nil
}

func (e *stubExpert) Autonomous() bool { return e.autonomous }

// constantPolicy always outputs the given scalar action.
func constantPolicy(v float64) Policy {
	return func(obs Observation) (Action, error) {
		return Action{v}, nil
	}
}

// stubLearner counts fits and hands out a policy whose output encodes how
// many fits have happened, so tests can observe policy refreshes.
type stubLearner struct {
	fits       int
	fitSamples []int
	fitOpts    []FitOptions
	saved      []string
}

func (l *stubLearner) Fit(observations map[string][][]float64, targets []Action, opts FitOptions) error {
	l.fits++
	l.fitSamples = append(l.fitSamples, len(targets))
	l.fitOpts = append(l.fitOpts, opts)
	return nil
}

func (l *stubLearner) GetPolicy() (Policy, error) {
	return constantPolicy(float64(l.fits)), nil
}

func (l *stubLearner) Save(dir, name string) error {
	l.saved = append(l.saved, name)
	return nil
}
