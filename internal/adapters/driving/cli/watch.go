package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/watch"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

var (
	watchDebounce  time.Duration
	watchRecursive bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest files as they are added or changed",
	Long: `Watches a directory and ingests supported files when they are created
or modified. Changes are batched until the directory has been quiet for the
debounce period. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before ingesting a batch")
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "also watch subdirectories")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	w := watch.New(dir, ingestService,
		watch.WithDebounce(watchDebounce),
		watch.WithRecursive(watchRecursive),
		watch.WithResultFunc(func(paths []string, result *domain.IngestionResult, err error) {
			printWatchResult(cmd, paths, result, err)
		}),
	)

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	if err := w.Run(cmd.Context()); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func printWatchResult(cmd *cobra.Command, paths []string, result *domain.IngestionResult, err error) {
	stamp := time.Now().Format("15:04:05")
	for _, p := range paths {
		cmd.Printf("[%s] %s\n", stamp, filepath.Base(p))
	}
	if result != nil {
		cmd.Printf("[%s] %s\n", stamp, result.Message)
		for _, f := range result.Failed {
			cmd.Printf("[%s]   failed: %s\n", stamp, f)
		}
	}
	if err != nil {
		cmd.PrintErrf("[%s] error: %v\n", stamp, err)
	}
}
