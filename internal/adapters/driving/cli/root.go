// Package cli provides the scholarsync command line interface.
// Commands talk to the core only through driving ports, which are
// installed by SetServices or built on demand by a Bootstrap function.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports used by commands.
type Services struct {
	Settings driving.SettingsService
	Ingest   driving.IngestService
	Index    driving.IndexService
	Answer   driving.AnswerService

	// Health reports whether the configured models are reachable. Optional.
	Health func(ctx context.Context) []ModelHealth

	// Close releases resources held by the services. Optional.
	Close func() error
}

// ModelHealth is the reachability of one configured model.
type ModelHealth struct {
	Role string
	Err  error
}

// Options are the global flags passed to a Bootstrap function.
type Options struct {
	// Ephemeral keeps the index in memory for this run only.
	Ephemeral bool
}

// Bootstrap builds the services for a command run.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	indexService    driving.IndexService
	answerService   driving.AnswerService
	checkHealth     func(ctx context.Context) []ModelHealth
	closeServices   func() error

	bootstrap Bootstrap

	verbose   bool
	ephemeral bool
)

// skipServices marks commands that run without the core services.
const skipServices = "skip-services"

var rootCmd = &cobra.Command{
	Use:   "scholarsync",
	Short: "Chat with your local documents",
	Long: `ScholarSync ingests PDFs, Word documents, presentations, spreadsheets,
CSV files and images into a local vector index and answers questions
grounded in their content.

Get started:
  scholarsync ingest ~/papers --recursive
  scholarsync ask "What does the survey conclude?"
  scholarsync chat`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the index in memory for this run")
}

// SetServices installs the driving ports directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	ingestService = s.Ingest
	indexService = s.Index
	answerService = s.Answer
	checkHealth = s.Health
	closeServices = s.Close
}

// SetBootstrap installs a function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close services: %w", cerr))
		}
		closeServices = nil
	}
	return err
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipServices] == "true" {
		return nil
	}
	s, err := bootstrap(cmd.Context(), Options{Ephemeral: ephemeral})
	if err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	SetServices(s)
	return nil
}
