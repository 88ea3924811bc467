// Package cli provides the command-line interface for studybuddy.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/GAYIVORE/studybuddy-cli/internal/client"
	"github.com/GAYIVORE/studybuddy-cli/internal/config"
	"github.com/GAYIVORE/studybuddy-cli/internal/session"
	"github.com/GAYIVORE/studybuddy-cli/internal/store"
	"github.com/GAYIVORE/studybuddy-cli/internal/upload"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Shared state built once in PersistentPreRunE
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	api        *client.Client
	ctrl       *session.Controller
	ui         *terminalUI
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "studybuddy",
	Short: "Terminal chat client for the StudyBuddy AI tutor",
	Long: `StudyBuddy is a terminal client for the Student AI Mentor service.

Chat with the AI tutor in general, study, or research mode, upload course
material into the knowledge base so answers can draw on your documents, and
keep the conversation locally so it survives between sessions.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, level)

		st, err := store.New(cfg.StateDir, logger)
		if err != nil {
			return err
		}

		url := cfg.ServerURL
		if serverURL != "" {
			url = serverURL
		}
		api = client.NewWithTimeout(url, cfg.ClientTimeout)

		ui = newTerminalUI()
		ctrl = session.New(api, st, ui, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// uploadPipeline builds the ingestion pipeline against the shared controller.
func uploadPipeline() *upload.Pipeline {
	return upload.New(api, ctrl, ui, logger, ctrl.Metrics())
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "StudyBuddy server URL (overrides config)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(feedbackCmd)
}
