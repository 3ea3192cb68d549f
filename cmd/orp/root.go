package main

import (
	"os"

	"github.com/spf13/cobra"
)

var baseDirFlag string

var rootCmd = &cobra.Command{
	Use:   "orp",
	Short: "Automated experiment pipeline",
	Long: `orp runs declaratively-configured experiments and records their
outcomes durably.

An experiment is a training command plus the deliverables it is expected
to produce. orp supervises the command in a scratch directory, validates
the deliverables, packages everything (including the captured stdout and
stderr) into an archive, and files the result under the completed or
failed result set.

Experiments can also be coordinated through tracker issues: workers
claim an issue, run the experiment embedded in its metadata block, and
project the run's status back onto the issue's labels.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDirFlag, "base-dir", "", "Base directory for experiments (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
