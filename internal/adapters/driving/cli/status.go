package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

var (
	statusJSON  bool
	statusCheck bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the knowledge base and model configuration",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "check that the configured models are reachable")
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	Index     *domain.IndexStats `json:"index"`
	Embedding string             `json:"embedding,omitempty"`
	LLM       string             `json:"llm,omitempty"`
	Vision    string             `json:"vision,omitempty"`
	Health    map[string]string  `json:"health,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, err := indexService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	out := statusOutput{Index: stats}
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		out.Embedding = modelLabel(settings.Embedding.Provider, settings.Embedding.Model)
		out.LLM = modelLabel(settings.LLM.Provider, settings.LLM.Model)
		out.Vision = modelLabel(settings.Vision.Provider, settings.Vision.Model)
	}

	var health []ModelHealth
	if statusCheck && checkHealth != nil {
		health = checkHealth(cmd.Context())
		out.Health = make(map[string]string, len(health))
		for _, h := range health {
			out.Health[h.Role] = healthLabel(h.Err)
		}
	}

	if statusJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Knowledge base")
	cmd.Printf("  Collection: %s\n", stats.Collection)
	if stats.Dir != "" {
		cmd.Printf("  Location:   %s\n", stats.Dir)
	}
	cmd.Printf("  Backend:    %s\n", stats.Backend)
	cmd.Printf("  Entries:    %d\n", stats.Entries)

	if settingsService != nil {
		cmd.Println()
		cmd.Println("Models")
		cmd.Printf("  Embedding:  %s\n", out.Embedding)
		cmd.Printf("  Answer:     %s\n", out.LLM)
		cmd.Printf("  Vision:     %s\n", out.Vision)
	}

	if len(health) > 0 {
		cmd.Println()
		cmd.Println("Reachability")
		for _, h := range health {
			cmd.Printf("  %-11s %s\n", h.Role+":", healthLabel(h.Err))
		}
	}
	return nil
}

func healthLabel(err error) string {
	if err != nil {
		return "unreachable (" + err.Error() + ")"
	}
	return "ok"
}

func modelLabel(provider domain.AIProvider, model string) string {
	if model == "" {
		return provider.String()
	}
	return fmt.Sprintf("%s (%s)", model, provider.Description())
}
