package imlearn

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Config holds the scalar configuration for a training run. Zero values for
// the per-phase override fields mean "inherit Timesteps/Rollouts".
type Config struct {
	Timesteps  int     // max timesteps per rollout (must be > 0)
	Rollouts   int     // rollouts per iteration (must be > 0)
	Iterations int     // DAgger iterations; 0 skips the loop entirely
	MixingRate float64 // per-iteration multiplicative decay of the mixing probability, in [0,1]

	// MixWithinRollout selects per-timestep mixing; false mixes whole
	// rollouts.
	MixWithinRollout bool

	// Seed drives every mixing decision through one shared generator.
	Seed int64

	Pretrain    bool // collect an expert-only dataset and fit before iterating
	TestExpert  bool // evaluate the expert before anything else
	TestInitial bool // evaluate the untrained policy before iterating
	TestPolicy  bool // evaluate the refit policy after each iteration
	TestFinal   bool // evaluate the final policy after all iterations

	LoadDataPath  string // dataset archive to resume from (optional)
	DataSavePath  string // directory for dataset archives; empty disables saving
	ModelSavePath string // directory for model snapshots; empty disables saving

	// Per-phase overrides, 0 = inherit.
	TestTimesteps     int
	TestRollouts      int
	PretrainTimesteps int
	PretrainRollouts  int
	InitialTimesteps  int
	InitialRollouts   int
	FinalTimesteps    int
	FinalRollouts     int

	FitOptions         FitOptions // passed to Learner.Fit in the iteration loop
	PretrainFitOptions FitOptions // passed to Learner.Fit for pretraining; nil falls back to FitOptions
}

// Validate checks scalar ranges before any rollout begins.
func (c *Config) Validate() error {
	if c.Timesteps <= 0 {
		return fmt.Errorf("timesteps must be positive, got %d", c.Timesteps)
	}
	if c.Rollouts <= 0 {
		return fmt.Errorf("rollouts must be positive, got %d", c.Rollouts)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", c.Iterations)
	}
	if c.MixingRate < 0 || c.MixingRate > 1 {
		return fmt.Errorf("mixing rate must be in [0,1], got %f", c.MixingRate)
	}
	overrides := map[string]int{
		"test_timesteps":     c.TestTimesteps,
		"test_rollouts":      c.TestRollouts,
		"pretrain_timesteps": c.PretrainTimesteps,
		"pretrain_rollouts":  c.PretrainRollouts,
		"initial_timesteps":  c.InitialTimesteps,
		"initial_rollouts":   c.InitialRollouts,
		"final_timesteps":    c.FinalTimesteps,
		"final_rollouts":     c.FinalRollouts,
	}
	for name, v := range overrides {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, v)
		}
	}
	return nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// Trainer is the DAgger orchestrator. It owns the cumulative dataset for
// the duration of a run and sequences pretraining, the iteration loop,
// evaluation checkpoints, and persistence.
type Trainer struct {
	cfg     Config
	sys     System
	expert  Expert
	learner Learner
	engine  *Engine
	logger  *logrus.Entry
	runID   string
}

// NewTrainer validates the configuration and wires the collaborators. An
// expert may be nil, which disables mixing everywhere, but pretraining and
// expert tests then cannot run. A nil logger falls back to the standard
// logrus logger.
func NewTrainer(cfg Config, sys System, expert Expert, learner Learner, logger *logrus.Entry) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dagger config: %w", err)
	}
	if sys == nil {
		return nil, fmt.Errorf("dagger config: system is required")
	}
	if learner == nil {
		return nil, fmt.Errorf("dagger config: learner is required")
	}
	if expert == nil && (cfg.Pretrain || cfg.TestExpert) {
		return nil, fmt.Errorf("dagger config: pretraining and expert tests require an expert")
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	runID := uuid.NewString()
	logger = logger.WithFields(logrus.Fields{"component": "dagger", "run": runID})
	return &Trainer{
		cfg:     cfg,
		sys:     sys,
		expert:  expert,
		learner: learner,
		engine:  NewEngine(cfg.Seed, logger),
		logger:  logger,
		runID:   runID,
	}, nil
}

// Result is the terminal state of a training run: the final policy handle
// and the complete accumulated dataset.
type Result struct {
	Policy Policy
	Data   *Dataset
	RunID  string
}

// Run executes the full DAgger sequence. Any failure from the system,
// expert, learner, or persistence propagates immediately; nothing is
// retried and nothing already appended to the dataset is rolled back. The
// dataset is saved after every accumulation step, so the most recent
// archive is always a valid resume point.
func (t *Trainer) Run() (*Result, error) {
	cfg := t.cfg
	t.logger.Info("starting dagger")

	if cfg.TestExpert {
		t.logger.Info("testing expert")
		ev, err := t.engine.Evaluate(t.sys, PolicyFromExpert(t.expert),
			orDefault(cfg.TestTimesteps, cfg.Timesteps), orDefault(cfg.TestRollouts, cfg.Rollouts))
		if err != nil {
			return nil, fmt.Errorf("expert test: %w", err)
		}
		if err := t.saveData(ev.Data, "expert_test", ""); err != nil {
			return nil, err
		}
	}

	if cfg.TestInitial {
		t.logger.Info("testing initial policy")
		policy, err := t.learner.GetPolicy()
		if err != nil {
			return nil, fmt.Errorf("initial test: %w", err)
		}
		ev, err := t.engine.Evaluate(t.sys, policy,
			orDefault(cfg.InitialTimesteps, cfg.Timesteps), orDefault(cfg.InitialRollouts, cfg.Rollouts))
		if err != nil {
			return nil, fmt.Errorf("initial test: %w", err)
		}
		if err := t.saveData(ev.Data, "initial_test", ""); err != nil {
			return nil, err
		}
	}

	data := NewDataset(WithDatasetLogger(t.logger))
	if cfg.LoadDataPath != "" {
		loaded, err := LoadDataset(cfg.LoadDataPath)
		if err != nil {
			return nil, err
		}
		data = loaded
		t.logger.Infof("loaded %d samples from %s", data.Len(), cfg.LoadDataPath)
	}

	if cfg.Pretrain {
		t.logger.Info("pretraining")
		result, err := t.engine.Rollout(t.sys, PolicyFromExpert(t.expert),
			orDefault(cfg.PretrainTimesteps, cfg.Timesteps), orDefault(cfg.PretrainRollouts, cfg.Rollouts),
			nil, 0, false)
		if err != nil {
			return nil, fmt.Errorf("pretraining: %w", err)
		}
		if err := data.Extend(result.Data); err != nil {
			return nil, fmt.Errorf("pretraining: %w", err)
		}
		if err := t.saveData(data, "pretrain", ""); err != nil {
			return nil, err
		}
		opts := cfg.PretrainFitOptions
		if opts == nil {
			opts = cfg.FitOptions
		}
		if err := t.learner.Fit(data.Observations, actionSeq(data.Targets), opts); err != nil {
			return nil, fmt.Errorf("pretraining fit: %w", err)
		}
		if err := t.saveModel(); err != nil {
			return nil, err
		}
	}

	policy, err := t.learner.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}

	mixing := 1.0
	for iter := 0; iter < cfg.Iterations; iter++ {
		mixing *= cfg.MixingRate
		t.logger.Infof("iteration %d, mixing probability %.4f", iter, mixing)
		result, err := t.engine.Rollout(t.sys, policy, cfg.Timesteps, cfg.Rollouts,
			t.expert, mixing, cfg.MixWithinRollout)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}
		if err := data.Extend(result.Data); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}
		if err := t.saveData(data, "", ""); err != nil {
			return nil, err
		}
		if err := t.learner.Fit(data.Observations, actionSeq(data.Targets), cfg.FitOptions); err != nil {
			return nil, fmt.Errorf("iteration %d fit: %w", iter, err)
		}
		if err := t.saveModel(); err != nil {
			return nil, err
		}
		if policy, err = t.learner.GetPolicy(); err != nil {
			return nil, fmt.Errorf("iteration %d: get policy: %w", iter, err)
		}
		if cfg.TestPolicy {
			t.logger.Infof("testing policy after iteration %d", iter)
			ev, err := t.engine.Evaluate(t.sys, policy,
				orDefault(cfg.TestTimesteps, cfg.Timesteps), orDefault(cfg.TestRollouts, cfg.Rollouts))
			if err != nil {
				return nil, fmt.Errorf("iteration %d test: %w", iter, err)
			}
			if err := t.saveData(ev.Data, "policy_test", fmt.Sprintf("iter%d", iter)); err != nil {
				return nil, err
			}
		}
	}

	if cfg.TestFinal {
		t.logger.Info("testing final policy")
		ev, err := t.engine.Evaluate(t.sys, policy,
			orDefault(cfg.FinalTimesteps, cfg.Timesteps), orDefault(cfg.FinalRollouts, cfg.Rollouts))
		if err != nil {
			return nil, fmt.Errorf("final test: %w", err)
		}
		if err := t.saveData(ev.Data, "final_test", ""); err != nil {
			return nil, err
		}
	}

	t.logger.Info("dagger complete")
	return &Result{Policy: policy, Data: data, RunID: t.runID}, nil
}

// saveData persists the dataset unless saving is disabled by configuration.
func (t *Trainer) saveData(d *Dataset, prefix, suffix string) error {
	if t.cfg.DataSavePath == "" {
		return nil
	}
	path, err := SaveDataset(t.cfg.DataSavePath, d, prefix, suffix)
	if err != nil {
		return err
	}
	t.logger.Infof("saved %d samples to %s", d.Len(), path)
	return nil
}

// saveModel persists the learner unless saving is disabled by configuration.
func (t *Trainer) saveModel() error {
	if t.cfg.ModelSavePath == "" {
		return nil
	}
	name := "model_" + timeNow().Format("20060102-150405")
	if err := t.learner.Save(t.cfg.ModelSavePath, name); err != nil {
		return fmt.Errorf("save model %s: %w", name, err)
	}
	t.logger.Infof("saved model %s to %s", name, t.cfg.ModelSavePath)
	return nil
}

// actionSeq views [][]float64 target rows as actions for Learner.Fit.
func actionSeq(rows [][]float64) []Action {
	out := make([]Action, len(rows))
	for i, r := range rows {
		out[i] = Action(r)
	}
	return out
}
