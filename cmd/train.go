package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ACDSLab/imitation-learning/imlearn"
	"github.com/ACDSLab/imitation-learning/imlearn/learner"
	"github.com/ACDSLab/imitation-learning/imlearn/pointmass"
)

var (
	// CLI flags for the training loop
	timesteps        int     // Max timesteps per rollout
	rollouts         int     // Rollouts per iteration
	iterations       int     // Number of DAgger iterations
	mixingRate       float64 // Per-iteration decay of the mixing probability
	mixWithinRollout bool    // Mix per timestep instead of per rollout
	seed             int64   // Seed for mixing decisions and episode resets
	logLevel         string  // Log verbosity level

	pretrain    bool // Collect an expert dataset and fit before iterating
	testExpert  bool // Evaluate the expert before training
	testInitial bool // Evaluate the untrained policy before training
	testPolicy  bool // Evaluate the policy after each iteration
	testFinal   bool // Evaluate the final policy

	loadDataPath  string // Dataset archive to resume from
	dataSavePath  string // Directory for dataset archives
	modelSavePath string // Directory for model snapshots
	configPath    string // Optional YAML training config overlaying the flags
	ridge         float64

	loadModelDir  string // Directory holding a saved model to start from
	loadModelName string // Name of the saved model to start from
)

// trainCmd runs the DAgger loop on the built-in point-mass system
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the DAgger loop on the built-in point-mass system",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		logger := logrus.NewEntry(logrus.StandardLogger())

		cfg := imlearn.Config{
			Timesteps:        timesteps,
			Rollouts:         rollouts,
			Iterations:       iterations,
			MixingRate:       mixingRate,
			MixWithinRollout: mixWithinRollout,
			Seed:             seed,
			Pretrain:         pretrain,
			TestExpert:       testExpert,
			TestInitial:      testInitial,
			TestPolicy:       testPolicy,
			TestFinal:        testFinal,
			LoadDataPath:     loadDataPath,
			DataSavePath:     dataSavePath,
			ModelSavePath:    modelSavePath,
		}
		if ridge > 0 {
			cfg.FitOptions = imlearn.FitOptions{"ridge": ridge}
		}
		if configPath != "" {
			bundle, err := LoadTrainingBundle(configPath)
			if err != nil {
				return err
			}
			bundle.Apply(&cfg)
		}

		sys := pointmass.NewSystem(cfg.Seed)
		expert := pointmass.NewExpert()
		var lrn *learner.Linear
		if loadModelName != "" {
			lrn, err = learner.Load(loadModelDir, loadModelName, logger)
		} else {
			lrn, err = learner.NewLinear([]learner.Field{
				{Name: pointmass.FieldPosition, Dim: 1},
				{Name: pointmass.FieldVelocity, Dim: 1},
			}, 1, logger)
		}
		if err != nil {
			return err
		}

		trainer, err := imlearn.NewTrainer(cfg, sys, expert, lrn, logger)
		if err != nil {
			return err
		}
		result, err := trainer.Run()
		if err != nil {
			return err
		}
		logrus.Infof("Training complete: run %s, %d samples collected", result.RunID, result.Data.Len())
		return nil
	},
}

// init sets up CLI flags and subcommands
func init() {
	trainCmd.Flags().IntVar(&timesteps, "timesteps", 200, "Max timesteps per rollout")
	trainCmd.Flags().IntVar(&rollouts, "rollouts", 5, "Rollouts per iteration")
	trainCmd.Flags().IntVar(&iterations, "iterations", 10, "Number of DAgger iterations (0 skips the loop)")
	trainCmd.Flags().Float64Var(&mixingRate, "mixing-rate", 0.5, "Per-iteration decay of the mixing probability, in [0,1]")
	trainCmd.Flags().BoolVar(&mixWithinRollout, "mix-within-rollout", true, "Mix expert/learner per timestep instead of per rollout")
	trainCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for mixing decisions and episode resets")
	trainCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	trainCmd.Flags().BoolVar(&pretrain, "pretrain", true, "Collect an expert dataset and fit before iterating")
	trainCmd.Flags().BoolVar(&testExpert, "test-expert", false, "Evaluate the expert before training")
	trainCmd.Flags().BoolVar(&testInitial, "test-initial", false, "Evaluate the untrained policy before training")
	trainCmd.Flags().BoolVar(&testPolicy, "test-policy", false, "Evaluate the policy after each iteration")
	trainCmd.Flags().BoolVar(&testFinal, "test-final", true, "Evaluate the final policy")

	trainCmd.Flags().StringVar(&loadDataPath, "load-data", "", "Dataset archive to resume from")
	trainCmd.Flags().StringVar(&dataSavePath, "data-dir", "", "Directory for dataset archives (empty disables saving)")
	trainCmd.Flags().StringVar(&modelSavePath, "model-dir", "", "Directory for model snapshots (empty disables saving)")
	trainCmd.Flags().StringVar(&configPath, "config", "", "YAML training config overlaying the flags")
	trainCmd.Flags().Float64Var(&ridge, "ridge", 0, "L2 regularization for the linear learner")
	trainCmd.Flags().StringVar(&loadModelDir, "load-model-dir", "", "Directory holding a saved model to start from")
	trainCmd.Flags().StringVar(&loadModelName, "load-model", "", "Name of a saved model to start from (no extension)")

	// Attach `train` as a subcommand to `root`
	rootCmd.AddCommand(trainCmd)
}
