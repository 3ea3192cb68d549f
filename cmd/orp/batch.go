package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nomadicsynth/orp/internal/experiment"
	"github.com/nomadicsynth/orp/pkg/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch <config-dir>",
	Short: "Run every experiment config in a directory",
	Long: `Run all YAML experiment configurations found in a directory.

Experiments run sequentially, one orchestration completing before the
next begins. A failed experiment does not stop the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	configFiles, err := collectConfigs(args[0])
	if err != nil {
		return err
	}
	if len(configFiles) == 0 {
		fmt.Printf("No YAML config files found in %s\n", args[0])
		return nil
	}
	fmt.Printf("Found %d experiment configurations\n", len(configFiles))

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

	var completed, failed int
	for _, configFile := range configFiles {
		fmt.Printf("\nRunning experiment: %s\n", filepath.Base(configFile))

		expCfg, err := experiment.Load(configFile)
		if err != nil {
			printStatus("✗", fmt.Sprintf("%s: %v", filepath.Base(configFile), err), color.FgRed)
			failed++
			continue
		}

		result, err := r.Execute(expCfg)
		if err != nil {
			printStatus("⚠", err.Error(), color.FgYellow)
		}
		printResult(result)

		if result.Status == models.StatusCompleted {
			completed++
		} else {
			failed++
		}
	}

	fmt.Printf("\nBatch finished: %d completed, %d failed\n", completed, failed)
	return nil
}

// collectConfigs gathers the YAML config files in a directory, sorted by
// name.
func collectConfigs(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan config directory: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}
