package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"martianoff/fakesmith/internal/cache"
	"martianoff/fakesmith/internal/generator"
	"martianoff/fakesmith/internal/loader"
	"martianoff/fakesmith/internal/metadata"
	"martianoff/fakesmith/internal/output"
)

var (
	generateInput   string
	generateOutput  string
	generateWorkers int
	generateNoCache bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate fakes from declaration descriptions",
	Long: `Generate fake implementations for every declaration described under
the input directory.

A metadata snapshot keyed by a content signature of the description files
is kept under <input>/.fakesmith; when the descriptions are unchanged the
snapshot is reused instead of reloading them.

Examples:
  fakesmith generate -i descriptions/ -o build/generated
  fakesmith generate -i descriptions/ -o build/generated --no-cache
  fakesmith generate -i descriptions/ -o build/generated --workers 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(newLogger())
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateInput, "input", "i", ".", "Directory containing declaration descriptions")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "generated", "Output directory for generated fakes")
	generateCmd.Flags().IntVarP(&generateWorkers, "workers", "w", 0, "Generation worker count (0 = one per CPU)")
	generateCmd.Flags().BoolVar(&generateNoCache, "no-cache", false, "Ignore and do not write the metadata snapshot")
}

// cachePath returns the snapshot location for an input directory.
func cachePath(inputDir string) string {
	return filepath.Join(inputDir, ".fakesmith", "cache.yaml")
}

// runGenerate is the full pipeline: signature, snapshot or load, generate,
// write. It is shared with watch mode.
func runGenerate(logger *log.Logger) error {
	start := time.Now()

	signature, err := cache.Signature(generateInput)
	if err != nil {
		return fmt.Errorf("failed to compute input signature: %w", err)
	}

	store := metadata.NewStore()
	fromCache := false
	if !generateNoCache {
		if snap, hit := cache.Load(cachePath(generateInput), signature); hit {
			if err := snap.Restore(store); err == nil {
				fromCache = true
				logger.Debug("metadata snapshot reused", "signature", signature)
			} else {
				// A stale snapshot must never fail a run.
				logger.Warn("discarding unreadable metadata snapshot", "error", err)
				store = metadata.NewStore()
			}
		}
	}

	if !fromCache {
		if err := loader.New(logger).LoadDir(generateInput, store); err != nil {
			return err
		}
		if !generateNoCache {
			path := cachePath(generateInput)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				logger.Warn("failed to create snapshot directory", "error", err)
			} else if err := cache.NewSnapshot(signature, store).Save(path); err != nil {
				logger.Warn("failed to write metadata snapshot", "error", err)
			}
		}
	}

	units := generator.NewEngine(store, generateWorkers, logger).GenerateAll()
	paths, err := output.NewWriter(generateOutput, logger).WriteAll(units)
	if err != nil {
		return err
	}

	logger.Info("generated fakes",
		"declarations", len(units),
		"files", len(paths),
		"cached", fromCache,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
