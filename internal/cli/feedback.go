package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GAYIVORE/studybuddy-cli/internal/client"
)

var (
	feedbackRating    int
	feedbackComment   string
	feedbackMessageID int
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Send feedback about a tutor response",
	Long: `Send feedback about a tutor response to the server.

The rating is required and ranges from 1 (poor) to 5 (excellent).
Optionally reference a specific response with --message-id.`,
	Args: cobra.NoArgs,
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().IntVarP(&feedbackRating, "rating", "r", 0, "rating from 1 to 5 (required)")
	feedbackCmd.Flags().StringVarP(&feedbackComment, "comment", "c", "", "optional comment")
	feedbackCmd.Flags().IntVar(&feedbackMessageID, "message-id", 0, "server message id the feedback refers to")
	_ = feedbackCmd.MarkFlagRequired("rating")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := api.SubmitFeedback(ctx, client.Feedback{
		Rating:    feedbackRating,
		Comment:   feedbackComment,
		MessageID: feedbackMessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to submit feedback: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Thanks! Feedback submitted.")
	return nil
}
