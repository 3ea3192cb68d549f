package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/nomadicsynth/orp/internal/config"
	"github.com/nomadicsynth/orp/internal/logging"
	"github.com/nomadicsynth/orp/internal/runner"
	"github.com/nomadicsynth/orp/internal/store"
	"github.com/nomadicsynth/orp/pkg/models"
)

// loadConfig loads the pipeline config and applies command-line
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if baseDirFlag != "" {
		cfg.BaseDir = baseDirFlag
		cfg.Store.Path = ""
	}
	applyStoreDefault(cfg)
	return cfg, nil
}

func applyStoreDefault(cfg *config.Config) {
	if cfg.Store.Path == "" {
		fresh := config.Default()
		fresh.BaseDir = cfg.BaseDir
		cfg.Store.Path = fresh.Store.Path
	}
}

// openStore creates the configured result store backend. The returned
// closer is a no-op for the filesystem backend.
func openStore(cfg *config.Config) (store.ResultStore, func() error, error) {
	switch cfg.Store.Backend {
	case "", "file":
		st, err := store.NewFileStore(cfg.BaseDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() error { return nil }, nil
	case "sqlite":
		st, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// newLogger returns the debug logger for the configured base directory,
// or a no-op logger when debug logging is off.
func newLogger(cfg *config.Config) *logging.DebugLogger {
	if !cfg.Debug {
		return logging.Nop()
	}
	return logging.ForBaseDir(cfg.BaseDir)
}

// newRunner wires up a Runner from the pipeline config.
func newRunner(cfg *config.Config, st store.ResultStore, log *logging.DebugLogger) (*runner.Runner, error) {
	return runner.New(cfg.BaseDir, st, runner.WithLogger(log))
}

// printStatus prints a colored status line.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// printResult prints the outcome of one run.
func printResult(result *models.ExperimentResult) {
	if result.Status == models.StatusCompleted {
		printStatus("✓", fmt.Sprintf("Experiment completed: %s", result.ExperimentID), color.FgGreen)
		if result.ArtifactsPath != "" {
			fmt.Printf("  Artifacts: %s\n", result.ArtifactsPath)
		}
	} else {
		printStatus("✗", fmt.Sprintf("Experiment failed: %s", result.ExperimentID), color.FgRed)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", result.ErrorMessage)
		}
		if result.ArtifactsPath != "" {
			fmt.Printf("  Logs preserved in: %s\n", result.ArtifactsPath)
		}
	}
	for _, w := range result.Warnings {
		printStatus("⚠", w, color.FgYellow)
	}
}

// printDeliverables prints the per-deliverable validation outcomes.
func printDeliverables(statuses map[string]models.DeliverableStatus) {
	if len(statuses) == 0 {
		return
	}
	fmt.Println("\nDeliverables:")
	for deliverableType, ds := range statuses {
		symbol, attr := "✗", color.FgRed
		if ds.Validated {
			symbol, attr = "✓", color.FgGreen
		}
		line := fmt.Sprintf("%s: %s", deliverableType, ds.Status)
		if len(ds.MissingKeys) > 0 {
			line += fmt.Sprintf(" (missing keys: %v)", ds.MissingKeys)
		}
		if ds.Error != "" {
			line += fmt.Sprintf(" (%s)", ds.Error)
		}
		printStatus("  "+symbol, line, attr)
	}
}
