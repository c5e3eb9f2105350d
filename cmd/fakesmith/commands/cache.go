package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"martianoff/fakesmith/internal/cache"
)

var cacheInput string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or remove the metadata snapshot",
	Long: `Manage the metadata snapshot fakesmith keeps under <input>/.fakesmith.

Examples:
  fakesmith cache info -i descriptions/
  fakesmith cache clean -i descriptions/`,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print snapshot status for the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cachePath(cacheInput)
		fmt.Printf("Snapshot: %s\n", path)

		signature, err := cache.Signature(cacheInput)
		if err != nil {
			return fmt.Errorf("failed to compute input signature: %w", err)
		}
		fmt.Printf("Input signature: %s\n", signature)

		snap, hit := cache.Load(path, signature)
		if !hit {
			if _, err := os.Stat(path); err != nil {
				fmt.Println("Status: missing")
			} else {
				fmt.Println("Status: stale (will be rebuilt on next generate)")
			}
			return nil
		}
		fmt.Println("Status: valid")
		fmt.Printf("Format version: %d\n", snap.FormatVersion)
		fmt.Printf("Declarations: %d interface(s), %d class(es), %d enum(s)\n",
			len(snap.Interfaces), len(snap.Classes), len(snap.Enums))
		fmt.Printf("Written: %s\n", time.UnixMilli(snap.GeneratedAtEpochMillis).Format(time.RFC3339))
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the snapshot for the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cachePath(cacheInput)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("Nothing to clean")
				return nil
			}
			return fmt.Errorf("failed to remove snapshot: %w", err)
		}
		fmt.Printf("Removed %s\n", path)
		return nil
	},
}

func init() {
	cacheCmd.PersistentFlags().StringVarP(&cacheInput, "input", "i", ".", "Directory containing declaration descriptions")
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}
