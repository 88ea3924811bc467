package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

var uploadDescription string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload course material to the knowledge base",
	Long: `Upload one or more documents to the tutor's knowledge base.

Supported formats: PDF (.pdf), plain text (.txt) and Markdown (.md).
Files larger than 10 MB are rejected. Files are uploaded one at a
time; a failed file does not stop the remaining ones.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "description stored with the uploaded material")
}

func runUpload(cmd *cobra.Command, args []string) error {
	pipeline := uploadPipeline()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var items []models.UploadItem
	if term.IsTerminal(int(os.Stdout.Fd())) {
		var err error
		items, err = runUploadProgress(ctx, pipeline, args, uploadDescription)
		if err != nil {
			return err
		}
	} else {
		items = pipeline.Process(ctx, args, uploadDescription)
	}

	var failed int
	for _, item := range items {
		if item.Status == models.UploadError {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to upload", failed, len(items))
	}
	return nil
}
