package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nomadicsynth/orp/internal/store"
	"github.com/nomadicsynth/orp/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of experiment results",
	Long: `Display counts per result set and the most recent completed and
failed experiments.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	completed, err := st.List(store.SetCompleted)
	if err != nil {
		return err
	}
	failed, err := st.List(store.SetFailed)
	if err != nil {
		return err
	}
	queued, err := st.List(store.SetQueued)
	if err != nil {
		return err
	}

	fmt.Println("Experiment Status Summary")
	fmt.Printf("  Completed: %d\n", len(completed))
	fmt.Printf("  Failed:    %d\n", len(failed))
	fmt.Printf("  Queued:    %d\n", len(queued))

	printRecent("Recent completed", completed)
	printRecent("Recent failed", failed)
	return nil
}

// printRecent lists up to five results, newest first.
func printRecent(heading string, results []*models.ExperimentResult) {
	if len(results) == 0 {
		return
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartTime.After(results[j].StartTime)
	})

	fmt.Printf("\n%s:\n", heading)
	for i, r := range results {
		if i == 5 {
			break
		}
		fmt.Printf("  • %s\n", r.ExperimentID)
	}
}
