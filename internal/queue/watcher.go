// Package queue consumes experiment configs dropped into the queue
// directory, running each one sequentially as it arrives.
package queue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nomadicsynth/orp/internal/logging"
)

// consumedSuffix marks configs the watcher has already processed, so a
// restart does not re-run them.
const consumedSuffix = ".done"

// Settle polling for configs written in place. A config dropped via
// atomic rename settles on the first poll.
const (
	settleInterval = 25 * time.Millisecond
	settlePolls    = 40
)

// Watcher watches the queue directory and hands each new config file to
// the run callback. Runs are sequential: one config finishes before the
// next is picked up.
type Watcher struct {
	dir string
	run func(path string) error
	log *logging.DebugLogger
}

// NewWatcher creates a watcher over dir. run is invoked with the path of
// each queued config file.
func NewWatcher(dir string, run func(path string) error, log *logging.DebugLogger) *Watcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{dir: dir, run: run, log: log}
}

// Watch processes configs already sitting in the queue directory, then
// blocks consuming new ones until the context is canceled.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create queue watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch queue directory: %w", err)
	}

	if err := w.drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Files moved into the directory surface as Create events.
			// Rename fires for files moved out, including our own
			// consumed-suffix renames, so it must not be handled.
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			if !queuedConfig(event.Name) {
				continue
			}
			w.process(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Log("queue watcher: %v", err)
		}
	}
}

// drain processes configs that were already queued before watching
// started, in name order.
func (w *Watcher) drain() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read queue directory: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if queuedConfig(path) {
			pending = append(pending, path)
		}
	}
	sort.Strings(pending)

	for _, path := range pending {
		w.process(path)
	}
	return nil
}

// process runs one queued config and marks it consumed. The config is
// marked consumed even when the run errors, so a bad config cannot wedge
// the queue; the error lands in the debug log and the result store.
func (w *Watcher) process(path string) {
	w.log.Log("queue: picked up %s", filepath.Base(path))
	waitSettled(path)

	if err := w.run(path); err != nil {
		w.log.Log("queue: %s: %v", filepath.Base(path), err)
	}

	if err := os.Rename(path, path+consumedSuffix); err != nil && !os.IsNotExist(err) {
		w.log.Log("queue: mark %s consumed: %v", filepath.Base(path), err)
	}
}

// waitSettled polls the file's size until it stops changing between
// polls, so a config still being written in place is not parsed
// half-written. Gives up after a bounded number of polls.
func waitSettled(path string) {
	last := int64(-1)
	for i := 0; i < settlePolls; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == last {
			return
		}
		last = info.Size()
		time.Sleep(settleInterval)
	}
}

// queuedConfig reports whether the path names an unconsumed experiment
// config file.
func queuedConfig(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
