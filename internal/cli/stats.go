package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/GAYIVORE/studybuddy-cli/internal/metrics"
)

var statsRemote bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session and knowledge-base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsRemote, "remote", false, "also fetch knowledge-base stats from the server")
}

func runStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	snap := ctrl.Stats()

	fmt.Fprintf(out, "Session uptime: %.0fs\n", snap.UptimeSeconds)
	fmt.Fprintf(out, "Messages:       %d\n", ctrl.MessageCount())
	fmt.Fprintf(out, "Uploaded files: %d\n\n", len(ctrl.UploadedFiles()))

	printOpStats(out, "chat", snap.Chat)
	printOpStats(out, "upload", snap.Upload)
	printOpStats(out, "health", snap.Health)

	if !statsRemote {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ragStats, err := api.GetRAGStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch knowledge-base stats: %w", err)
	}

	fmt.Fprintln(out, "\nKnowledge base:")
	fmt.Fprintf(out, "  status:          %s\n", ragStats.Status)
	fmt.Fprintf(out, "  embedding model: %s\n", ragStats.EmbeddingModel)
	fmt.Fprintf(out, "  collection:      %s\n", ragStats.CollectionName)
	fmt.Fprintf(out, "  chunk size:      %d\n", ragStats.ChunkSize)
	fmt.Fprintf(out, "  search results:  %d\n", ragStats.SearchResults)
	return nil
}

func printOpStats(out io.Writer, name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Fprintf(out, "%s: %d call(s), %d failed, avg %.0fms (min %dms, max %dms)\n",
		name, op.Count, op.Failures, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
