package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui"
)

// runChatApp starts the terminal UI. Tests replace it to avoid taking over the terminal.
var runChatApp = func(app *tui.App) error {
	return app.Run()
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the knowledge base in the terminal",
	Long: `Opens an interactive question and answer session.

Controls:
  Enter    - Ask the question
  Tab      - Browse the sources of the last answer
  PgUp/Dn  - Scroll the conversation
  Esc      - Menu (knowledge base stats, reset, help)
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("chat panicked: %v", r)
		}
	}()

	ports := &tui.Ports{
		Answer: answerService,
		Index:  indexService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runChatApp(app); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
