package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

var (
	historyLimit  int
	historyOffset int
	historyFilter string
	historyRemote bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation history",
	Long: `Show the conversation history.

By default the locally persisted conversation is shown. With --remote
the server-side history is fetched instead, which supports paging and
filtering by mode.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum number of messages to show")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "number of messages to skip (remote only)")
	historyCmd.Flags().StringVarP(&historyFilter, "mode", "m", "", "only show messages from this mode (remote only)")
	historyCmd.Flags().BoolVar(&historyRemote, "remote", false, "fetch the server-side history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyRemote {
		return printRemoteHistory(cmd)
	}

	messages := ctrl.Messages()
	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversation history.")
		return nil
	}
	if historyLimit > 0 && len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}

	theme := defaultTheme
	for _, msg := range messages {
		label := theme.tutorStyle().Render(msg.Sender.DisplayName())
		if msg.Sender == models.SenderUser {
			label = theme.userStyle().Render(msg.Sender.DisplayName())
		}
		stamp := theme.hintStyle().Render(msg.Timestamp.Local().Format("Jan 2 15:04"))
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n\n", label, stamp, msg.Content)
	}
	return nil
}

func printRemoteHistory(cmd *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := api.History(ctx, historyLimit, historyOffset, historyFilter)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	if len(page.Messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No messages on the server.")
		return nil
	}

	theme := defaultTheme
	for _, msg := range page.Messages {
		label := theme.tutorStyle().Render("StudyBuddy")
		if msg.Role == "user" {
			label = theme.userStyle().Render("You")
		}
		meta := msg.Timestamp
		if msg.Mode != "" {
			meta += " · " + msg.Mode
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n\n", label, theme.hintStyle().Render(meta), msg.Message)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d messages", len(page.Messages), page.Total)
	if page.HasMore {
		fmt.Fprintf(cmd.OutOrStdout(), " (use --offset %d for more)", page.Offset+page.Limit)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
