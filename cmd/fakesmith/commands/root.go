// Package commands provides the CLI commands for the fakesmith tool.
package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fakesmith",
	Short: "Configurable fake generator for Kotlin declarations",
	Long: `Fakesmith generates configurable fake implementations of Kotlin
interfaces and classes from YAML declaration descriptions.

Each generated fake carries a behavior slot, an invocation counter and a
configuration hook per member, plus a builder-style factory function.

Usage:
  fakesmith generate -i descriptions/ -o build/generated   Generate fakes
  fakesmith watch -i descriptions/ -o build/generated      Regenerate on change
  fakesmith cache info -i descriptions/                    Inspect the cache
  fakesmith version                                        Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("unknown command %q for \"fakesmith\"\nRun 'fakesmith --help' for usage", args[0])
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "fakesmith",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
