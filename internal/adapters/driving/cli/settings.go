package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change model providers, index location and ingestion options.

Settings are stored in ~/.scholarsync/config.toml. SCHOLARSYNC_* environment
variables (and a .env file in the working directory) override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key.

Examples:
  scholarsync settings set retrieval.k 6
  scholarsync settings set index.backend weaviate
  scholarsync settings set ingest.workers 4
  scholarsync settings set loaders.pdf.boilerplate "Draft,Confidential"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderPrompt(cmd, embeddingPrompt)
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the answer model provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderPrompt(cmd, llmPrompt)
	},
}

var settingsVisionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Configure the image captioning provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderPrompt(cmd, visionPrompt)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsVisionCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Vision]")
	printProvider(cmd, settings.Vision.Provider, settings.Vision.Model,
		settings.Vision.BaseURL, settings.Vision.APIKey, settings.Vision.IsConfigured())
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	cmd.Printf("  Collection: %s\n", settings.Index.Collection)
	switch settings.Index.Backend {
	case domain.IndexBackendWeaviate:
		cmd.Printf("  Weaviate: %s://%s\n", settings.Index.WeaviateScheme, settings.Index.WeaviateHost)
	case domain.IndexBackendSQLite:
		cmd.Printf("  Directory: %s\n", settings.Index.Dir)
	}
	cmd.Printf("  Dedupe: %s\n", yesNo(settings.Index.Dedupe))
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top k: %d\n", settings.Retrieval.K)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Workers: %d\n", settings.Ingest.Workers)
	cmd.Printf("  Table chunk size: %d rows\n", settings.Ingest.TableChunkSize)
	cmd.Printf("  Pipeline: %s\n", strings.Join(settings.Pipeline.Processors, ", "))
	if len(settings.Loaders.PDFBoilerplate) > 0 {
		cmd.Printf("  PDF boilerplate: %s\n", strings.Join(settings.Loaders.PDFBoilerplate, ", "))
	}
	if settings.QueryLogPath != "" {
		cmd.Printf("  Query log: %s\n", settings.QueryLogPath)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'scholarsync settings embedding' or 'scholarsync settings llm' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, displayValue(key, value))
	return nil
}

// displayValue hides secrets when echoing a setting back.
func displayValue(key, value string) string {
	if strings.HasSuffix(key, "api_key") {
		return maskAPIKey(value)
	}
	return value
}

// providerPrompt describes one interactive provider configuration flow.
type providerPrompt struct {
	title     string
	providers func() []domain.AIProvider
	defaults  func() map[domain.AIProvider]string
	apply     func(provider domain.AIProvider, model, apiKey string) error
}

var (
	embeddingPrompt = providerPrompt{
		title:     "Embedding",
		providers: domain.AllEmbeddingProviders,
		defaults:  domain.DefaultEmbeddingModels,
		apply: func(p domain.AIProvider, model, apiKey string) error {
			return settingsService.SetEmbeddingProvider(p, model, apiKey)
		},
	}
	llmPrompt = providerPrompt{
		title:     "Answer model",
		providers: domain.AllLLMProviders,
		defaults:  domain.DefaultLLMModels,
		apply: func(p domain.AIProvider, model, apiKey string) error {
			return settingsService.SetLLMProvider(p, model, apiKey)
		},
	}
	visionPrompt = providerPrompt{
		title:     "Vision model",
		providers: domain.AllLLMProviders,
		defaults:  domain.DefaultVisionModels,
		apply: func(p domain.AIProvider, model, apiKey string) error {
			return settingsService.SetVisionProvider(p, model, apiKey)
		},
	}
)

func runProviderPrompt(cmd *cobra.Command, prompt providerPrompt) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Select %s Provider\n", prompt.title)
	providers := prompt.providers()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := prompt.defaults()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := prompt.apply(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", strings.ToLower(prompt.title), err)
	}

	cmd.Printf("%s provider configured: %s (%s)\n", prompt.title, selected.Description(), model)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, and falls back
// to a plain line read otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
