package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GAYIVORE/studybuddy-cli/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the connection to the StudyBuddy server",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	theme := defaultTheme
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Server: %s\n", api.BaseURL())

	if ctrl.Probe(ctx) != session.StatusConnected {
		fmt.Fprintln(out, theme.errorStyle().Render("✗ Disconnected"))
		return fmt.Errorf("server is not reachable")
	}

	health, err := api.Health(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Fprintln(out, theme.successStyle().Render("✓ Connected"))
	fmt.Fprintf(out, "  API connection:  %s\n", health.APIConnection)
	fmt.Fprintf(out, "  Model:           %s\n", health.Model)
	fmt.Fprintf(out, "  Knowledge base:  %t\n", health.RAGAvailable)
	fmt.Fprintf(out, "  Server messages: %d\n", health.ConversationMessages)
	fmt.Fprintf(out, "  Local messages:  %d\n", ctrl.MessageCount())
	return nil
}
