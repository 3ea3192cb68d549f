package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomadicsynth/orp/internal/experiment"
	"github.com/nomadicsynth/orp/pkg/models"
)

var runCmd = &cobra.Command{
	Use:   "run <config-file>",
	Short: "Run a single experiment from a configuration file",
	Long: `Run a single experiment described by a YAML configuration file.

The training command executes in a fresh scratch directory. Afterward
the declared deliverables are validated, everything is packaged into an
archive under <base-dir>/artifacts, and the result is filed under the
completed or failed result set.`,
	Args: cobra.ExactArgs(1),
	RunE: runExperiment,
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	expCfg, err := experiment.Load(args[0])
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	log := newLogger(cfg)
	defer log.Close()

	r, err := newRunner(cfg, st, log)
	if err != nil {
		return err
	}

	result, err := r.Execute(expCfg)
	if err != nil {
		return err
	}

	printResult(result)
	printDeliverables(result.DeliverablesStatus)

	if result.Status == models.StatusFailed {
		return fmt.Errorf("experiment %s failed", result.ExperimentID)
	}
	return nil
}
