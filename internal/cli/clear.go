package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	clearRemote bool
	clearYes    bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the conversation history",
	Long: `Clear the locally persisted conversation.

With --remote the server-side history is cleared as well. Asks for
confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearRemote, "remote", false, "also clear the server-side history")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	count := ctrl.MessageCount()
	if count == 0 && !clearRemote {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clear.")
		return nil
	}

	if !clearYes {
		fmt.Fprintf(cmd.OutOrStdout(), "Clear %d message(s)? [y/N] ", count)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ctrl.Clear(ctx, clearRemote)
	fmt.Fprintln(cmd.OutOrStdout(), "Conversation cleared.")
	return nil
}
