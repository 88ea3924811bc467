package cli

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

var chatMode string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session with the tutor",
	Long: `Start an interactive chat session with the AI tutor.

The previous conversation is restored from local state. Inside the session:

  /mode general|study|research   switch conversation mode
  /rag                           toggle the knowledge-base context
  /clear                         clear the chat history
  /export                        save the conversation to a JSON file
  /quit                          leave the session`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", "general", "initial conversation mode")
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("chat requires an interactive terminal; use 'studybuddy ask' instead")
	}
	if err := ctrl.SetMode(models.Mode(chatMode)); err != nil {
		return err
	}

	events := make(chan uiEvent, 32)
	ctrl.SetUI(&chatUI{events: events})
	defer ctrl.SetUI(ui)

	model := newChatModel(ctrl, events)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
