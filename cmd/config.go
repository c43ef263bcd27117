package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ACDSLab/imitation-learning/imlearn"
)

// TrainingBundle holds training configuration loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" — they do not override the CLI
// flag values. Applied on top of flags, so the file wins where both set a
// value.
type TrainingBundle struct {
	Timesteps        *int     `yaml:"timesteps"`
	Rollouts         *int     `yaml:"rollouts"`
	Iterations       *int     `yaml:"iterations"`
	MixingRate       *float64 `yaml:"mixing_rate"`
	MixWithinRollout *bool    `yaml:"mix_within_rollout"`
	Seed             *int64   `yaml:"seed"`

	Pretrain    *bool `yaml:"pretrain"`
	TestExpert  *bool `yaml:"test_expert"`
	TestInitial *bool `yaml:"test_initial"`
	TestPolicy  *bool `yaml:"test_policy"`
	TestFinal   *bool `yaml:"test_final"`

	LoadDataPath  *string `yaml:"load_data_path"`
	DataSavePath  *string `yaml:"data_save_path"`
	ModelSavePath *string `yaml:"model_save_path"`

	TestTimesteps     *int `yaml:"test_timesteps"`
	TestRollouts      *int `yaml:"test_rollouts"`
	PretrainTimesteps *int `yaml:"pretrain_timesteps"`
	PretrainRollouts  *int `yaml:"pretrain_rollouts"`
	InitialTimesteps  *int `yaml:"initial_timesteps"`
	InitialRollouts   *int `yaml:"initial_rollouts"`
	FinalTimesteps    *int `yaml:"final_timesteps"`
	FinalRollouts     *int `yaml:"final_rollouts"`

	Ridge *float64 `yaml:"ridge"`
}

// LoadTrainingBundle reads and parses a YAML training configuration file.
func LoadTrainingBundle(path string) (*TrainingBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading training config: %w", err)
	}
	var bundle TrainingBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing training config: %w", err)
	}
	return &bundle, nil
}

// Apply overlays the set fields of the bundle onto cfg.
func (b *TrainingBundle) Apply(cfg *imlearn.Config) {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&cfg.Timesteps, b.Timesteps)
	setInt(&cfg.Rollouts, b.Rollouts)
	setInt(&cfg.Iterations, b.Iterations)
	if b.MixingRate != nil {
		cfg.MixingRate = *b.MixingRate
	}
	setBool(&cfg.MixWithinRollout, b.MixWithinRollout)
	if b.Seed != nil {
		cfg.Seed = *b.Seed
	}
	setBool(&cfg.Pretrain, b.Pretrain)
	setBool(&cfg.TestExpert, b.TestExpert)
	setBool(&cfg.TestInitial, b.TestInitial)
	setBool(&cfg.TestPolicy, b.TestPolicy)
	setBool(&cfg.TestFinal, b.TestFinal)
	setString(&cfg.LoadDataPath, b.LoadDataPath)
	setString(&cfg.DataSavePath, b.DataSavePath)
	setString(&cfg.ModelSavePath, b.ModelSavePath)
	setInt(&cfg.TestTimesteps, b.TestTimesteps)
	setInt(&cfg.TestRollouts, b.TestRollouts)
	setInt(&cfg.PretrainTimesteps, b.PretrainTimesteps)
	setInt(&cfg.PretrainRollouts, b.PretrainRollouts)
	setInt(&cfg.InitialTimesteps, b.InitialTimesteps)
	setInt(&cfg.InitialRollouts, b.InitialRollouts)
	setInt(&cfg.FinalTimesteps, b.FinalTimesteps)
	setInt(&cfg.FinalRollouts, b.FinalRollouts)
	if b.Ridge != nil {
		if cfg.FitOptions == nil {
			cfg.FitOptions = imlearn.FitOptions{}
		}
		cfg.FitOptions["ridge"] = *b.Ridge
	}
}
