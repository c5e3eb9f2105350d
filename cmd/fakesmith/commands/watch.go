package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounceWindow batches bursts of file events, such as an editor writing a
// temp file and renaming it over the original, into one regeneration.
const debounceWindow = 250 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate fakes whenever descriptions change",
	Long: `Watch the input directory and regenerate fakes on every change to a
description file. Runs one full generation up front, then blocks until
interrupted.

Example:
  fakesmith watch -i descriptions/ -o build/generated`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch()
	},
}

func init() {
	watchCmd.Flags().StringVarP(&generateInput, "input", "i", ".", "Directory containing declaration descriptions")
	watchCmd.Flags().StringVarP(&generateOutput, "output", "o", "generated", "Output directory for generated fakes")
	watchCmd.Flags().IntVarP(&generateWorkers, "workers", "w", 0, "Generation worker count (0 = one per CPU)")
	watchCmd.Flags().BoolVar(&generateNoCache, "no-cache", false, "Ignore and do not write the metadata snapshot")
}

func runWatch() error {
	logger := newLogger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the whole input tree; fsnotify does not recurse on its own.
	// Hidden directories are skipped, but only below the root: the input
	// directory itself may live under a dot-component path.
	err = filepath.Walk(generateInput, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != generateInput && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", generateInput, err)
	}

	if err := runGenerate(logger); err != nil {
		logger.Error("generation failed", "error", err)
	}
	logger.Info("watching for changes", "input", generateInput)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var debounce *time.Timer
	regen := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDescriptionEvent(generateInput, event) {
				continue
			}
			// New subdirectories must be picked up for future events.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
					continue
				}
			}
			logger.Debug("description changed", "file", event.Name, "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				select {
				case regen <- struct{}{}:
				default:
				}
			})
		case <-regen:
			if err := runGenerate(logger); err != nil {
				logger.Error("generation failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		case <-interrupt:
			logger.Info("stopping watch")
			return nil
		}
	}
}

// isDescriptionEvent filters events down to description files and directory
// creations; the snapshot under .fakesmith must not retrigger generation.
// Hidden-path detection is per component relative to the watched root, so a
// root that itself lives under a dot directory still watches normally.
func isDescriptionEvent(root string, event fsnotify.Event) bool {
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "." && strings.HasPrefix(part, ".") {
			return false
		}
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return true
		}
	}
	switch filepath.Ext(event.Name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
