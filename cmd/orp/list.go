package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nomadicsynth/orp/internal/tracker"
)

var listState string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiment work items on the tracker",
	Long: `List tracker issues carrying the experiment label.

Requires GITHUB_TOKEN and GITHUB_REPOSITORY in the environment.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listState, "state", "open", "Issue state to list: open, closed, or all")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ghCfg, err := tracker.GitHubConfigFromEnv()
	if err != nil {
		return err
	}
	st, err := tracker.NewGitHubStore(cmd.Context(), ghCfg)
	if err != nil {
		return err
	}

	items, err := st.ListItems(cmd.Context(), listState, []string{cfg.Tracker.ExperimentLabel})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Printf("No %s experiment work items in %s\n", listState, ghCfg.Repository)
		return nil
	}

	for _, item := range items {
		line := fmt.Sprintf("#%d %s", item.ID, item.Title)
		if item.Assignee != "" {
			line += fmt.Sprintf(" (claimed by %s)", item.Assignee)
		}
		if len(item.Labels) > 0 {
			line += fmt.Sprintf(" [%s]", strings.Join(item.Labels, ", "))
		}
		fmt.Println(line)
	}
	return nil
}
