package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
	"github.com/GAYIVORE/studybuddy-cli/internal/session"
)

var (
	askMode string
	askRAG  bool
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message to the tutor and print the reply",
	Long: `Send one message to the AI tutor and print the reply.

The turn is appended to the local conversation just like an interactive
session, so a later "studybuddy chat" picks up where you left off.

Examples:
  studybuddy ask "Explain the chain rule"
  studybuddy ask --mode study "Quiz me on photosynthesis"
  studybuddy ask --rag "Summarize chapter 3 of my notes"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "general", "conversation mode (general, study, research)")
	askCmd.Flags().BoolVar(&askRAG, "rag", false, "answer using the uploaded knowledge base")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ctrl.SetMode(models.Mode(askMode)); err != nil {
		return err
	}
	if askRAG {
		ctrl.SetKnowledgeBase(true)
	}

	err := ctrl.Send(context.Background(), strings.Join(args, " "))
	switch {
	case errors.Is(err, session.ErrEmptyMessage), errors.Is(err, session.ErrMessageTooLong):
		// Diagnostic already shown by the controller.
		return err
	case err != nil:
		return err
	}
	return nil
}
