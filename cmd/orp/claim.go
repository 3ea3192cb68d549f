package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nomadicsynth/orp/internal/tracker"
	"github.com/nomadicsynth/orp/pkg/models"
)

var claimAs string

var claimCmd = &cobra.Command{
	Use:   "claim <issue-number>",
	Short: "Claim a tracker work item and run its experiment",
	Long: `Attempt to claim a tracker issue, and on success run the experiment
embedded in its metadata block.

The claim is optimistic: the issue is assigned, then re-read to confirm
the claim was not lost to a concurrent worker. The run's status is
projected back onto the issue as in-progress, then completed or failed,
each with a summary comment.

Requires GITHUB_TOKEN and GITHUB_REPOSITORY in the environment. The
claimant identity comes from --as, the tracker.claimant config setting,
or GITHUB_ACTOR.`,
	Args: cobra.ExactArgs(1),
	RunE: runClaim,
}

func init() {
	claimCmd.Flags().StringVar(&claimAs, "as", "", "Claimant identity (defaults to tracker.claimant config)")
}

func runClaim(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("issue number must be an integer, got %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	claimant := claimAs
	if claimant == "" {
		claimant = cfg.Tracker.Claimant
	}
	if claimant == "" {
		return fmt.Errorf("no claimant identity: pass --as or set tracker.claimant")
	}

	ghCfg, err := tracker.GitHubConfigFromEnv()
	if err != nil {
		return err
	}
	ghStore, err := tracker.NewGitHubStore(ctx, ghCfg)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Close()

	coord := tracker.NewCoordinator(ghStore, log)
	if !coord.Claim(ctx, id, claimant) {
		return fmt.Errorf("could not claim work item #%d (already claimed or lost the race)", id)
	}
	printStatus("✓", fmt.Sprintf("Claimed work item #%d as %s", id, claimant), color.FgGreen)

	item, err := ghStore.GetItem(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch claimed work item: %w", err)
	}
	expCfg := tracker.ConfigFromItem(item)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	r, err := newRunner(cfg, st, log)
	if err != nil {
		return err
	}

	// Status projection is best-effort throughout: a tracker failure
	// must never block the experiment's own result from being recorded.
	result := &models.ExperimentResult{}
	if err := coord.UpdateStatus(ctx, id, tracker.LabelInProgress, fmt.Sprintf("Starting experiment for work item #%d", id)); err != nil {
		result.Warn(fmt.Sprintf("project in-progress status: %v", err))
	}

	run := r.Run(expCfg)
	run.Warnings = append(result.Warnings, run.Warnings...)

	status, comment := summarize(run)
	if err := coord.UpdateStatus(ctx, id, status, comment); err != nil {
		run.Warn(fmt.Sprintf("project %s status: %v", status, err))
	}
	if run.Status == models.StatusCompleted && run.ArtifactsPath != "" {
		if err := coord.Comment(ctx, id, fmt.Sprintf("Artifacts packaged: `%s`", run.ArtifactsPath)); err != nil {
			run.Warn(fmt.Sprintf("post artifact reference: %v", err))
		}
	}

	if err := st.Save(run); err != nil {
		return fmt.Errorf("save result %s: %w", run.ExperimentID, err)
	}

	printResult(run)
	printDeliverables(run.DeliverablesStatus)

	if run.Status == models.StatusFailed {
		return fmt.Errorf("experiment %s failed", run.ExperimentID)
	}
	return nil
}

// summarize maps a run to its tracker status label and summary comment.
func summarize(result *models.ExperimentResult) (status, comment string) {
	if result.Status == models.StatusCompleted {
		return tracker.LabelCompleted, fmt.Sprintf("Experiment %s completed.", result.ExperimentID)
	}
	return tracker.LabelFailed, fmt.Sprintf("Experiment %s failed: %s", result.ExperimentID, result.ErrorMessage)
}
