package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 300 * time.Millisecond

// watchAndRender re-runs render whenever one of the watched files changes.
// Events are debounced so an editor's write burst produces one render.
func watchAndRender(cmd *cobra.Command, paths []string, render func() error) error {
	logger := newLogger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("cannot watch %s: %w", p, err)
		}
	}
	logger.Info("watching for changes", "paths", strings.Join(paths, ", "))

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// editors often replace files, dropping the watch with them
			if event.Op&fsnotify.Rename != 0 {
				_ = watcher.Add(event.Name)
			}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "err", err)
		case <-timer.C:
			if err := render(); err != nil {
				logger.Error("render failed", "err", err)
			}
		}
	}
}
