package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

var (
	askK    int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the knowledge base",
	Long: `Retrieves the chunks most similar to the question and asks the
language model to answer from them. The answer is followed by the
sources it was grounded on, most similar first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// topKAnswerer is implemented by answer services that can change k per call.
type topKAnswerer interface {
	WithTopK(k int) driving.AnswerService
}

type askSource struct {
	Filename string  `json:"filename"`
	Source   string  `json:"source"`
	Type     string  `json:"type"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

type askOutput struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Sources  []askSource `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	svc := answerService
	if askK > 0 {
		if t, ok := svc.(topKAnswerer); ok {
			svc = t.WithTopK(askK)
		}
	}

	answer, err := svc.Answer(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, answer)
	}
	outputAskText(cmd, answer)
	return nil
}

func outputAskJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := askOutput{
		Question: answer.Question,
		Answer:   answer.Text,
		Sources:  make([]askSource, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		out.Sources[i] = askSource{
			Filename: src.Record.Filename(),
			Source:   src.Record.Source(),
			Type:     src.Record.Type().String(),
			Score:    src.Score,
			Content:  src.Record.Content(),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(strings.TrimSpace(answer.Text))

	if len(answer.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s\n", i+1, sourceLabel(src))
	}
}

// sourceLabel renders "filename (type, score)".
func sourceLabel(src domain.ScoredRecord) string {
	name := src.Record.Filename()
	if name == "" {
		name = "(unknown)"
	}
	return fmt.Sprintf("%s (%s, %.2f)", name, src.Record.Type(), src.Score)
}
