package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nomadicsynth/orp/internal/store"
)

var infoCmd = &cobra.Command{
	Use:   "info <experiment-id>",
	Short: "Show details for one experiment",
	Long:  `Look up an experiment result across all result sets and print it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	experimentID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	result, set, err := st.Get(experimentID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("experiment %s not found", experimentID)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Experiment: %s\n", result.ExperimentID)
	fmt.Printf("Status:     %s (%s set)\n", result.Status, set)
	fmt.Printf("Started:    %s\n", result.StartTime.Format(time.RFC3339))
	if result.EndTime != nil {
		fmt.Printf("Ended:      %s\n", result.EndTime.Format(time.RFC3339))
	}
	if result.ErrorMessage != "" {
		fmt.Printf("Error:      %s\n", result.ErrorMessage)
	}
	if result.ArtifactsPath != "" {
		fmt.Printf("Artifacts:  %s\n", result.ArtifactsPath)
	}
	if result.StdoutRef != "" {
		fmt.Printf("Stdout:     %s\n", result.StdoutRef)
	}
	if result.StderrRef != "" {
		fmt.Printf("Stderr:     %s\n", result.StderrRef)
	}
	for _, w := range result.Warnings {
		fmt.Printf("Warning:    %s\n", w)
	}

	printDeliverables(result.DeliverablesStatus)
	return nil
}
