package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	exportDir    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversation to a file",
	Long: `Export the conversation to a file in the chosen format.

JSON exports carry the full message metadata; HTML exports render the
tutor's markdown into a standalone page.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write the export into")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format (json or html)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if ctrl.MessageCount() == 0 {
		return fmt.Errorf("nothing to export: conversation is empty")
	}

	var (
		path string
		err  error
	)
	switch exportFormat {
	case "json":
		path, err = ctrl.Export(exportDir)
	case "html":
		path, err = ctrl.ExportHTML(exportDir)
	default:
		return fmt.Errorf("unknown format %q (expected json or html)", exportFormat)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}
