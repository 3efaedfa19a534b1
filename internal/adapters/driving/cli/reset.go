package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete everything in the knowledge base",
	Long: `Drops the whole collection. Ingested files are not touched; run
ingest again to rebuild the index.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if !resetYes {
		cmd.Print("Delete all entries from the knowledge base? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	existed, err := indexService.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Println(domain.ClearMessage(existed))
	return nil
}
