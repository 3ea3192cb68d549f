package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nomadicsynth/orp/internal/experiment"
	"github.com/nomadicsynth/orp/internal/queue"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the queue directory and run experiments as they arrive",
	Long: `Watch <base-dir>/queue for experiment configuration files and run
each one as it appears. Configs already in the queue are processed
first, then the watcher blocks until interrupted.

Consumed configs are renamed with a .done suffix so a restart does not
re-run them. Experiments run sequentially.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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

	queueDir := filepath.Join(cfg.BaseDir, "queue")
	watcher := queue.NewWatcher(queueDir, func(path string) error {
		expCfg, err := experiment.Load(path)
		if err != nil {
			return err
		}
		result, err := r.Execute(expCfg)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	}, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for experiment configs (ctrl-c to stop)\n", queueDir)
	return watcher.Watch(ctx)
}
