package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change preferences",
	Long: `Show or change persisted preferences.

Without arguments the current settings are listed. Known keys:

  autoScroll          true|false
  soundEffects        true|false
  markdownRendering   true|false
  theme               light|dark|auto
  fontSize            small|medium|large
  model               model name sent with chat requests`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := ctrl.Settings()
		var value any
		switch args[0] {
		case "autoScroll":
			value = s.AutoScroll
		case "soundEffects":
			value = s.SoundEffects
		case "markdownRendering":
			value = s.MarkdownRendering
		case "theme":
			value = s.Theme
		case "fontSize":
			value = s.FontSize
		case "model":
			value = s.Model
		default:
			return fmt.Errorf("unknown setting %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a preference",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl.ResetSettings()
		fmt.Fprintln(cmd.OutOrStdout(), "Settings restored to defaults.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s := ctrl.Settings()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "autoScroll:         %t\n", s.AutoScroll)
	fmt.Fprintf(out, "soundEffects:       %t\n", s.SoundEffects)
	fmt.Fprintf(out, "markdownRendering:  %t\n", s.MarkdownRendering)
	fmt.Fprintf(out, "theme:              %s\n", s.Theme)
	fmt.Fprintf(out, "fontSize:           %s\n", s.FontSize)
	fmt.Fprintf(out, "model:              %s\n", s.Model)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	s := ctrl.Settings()

	switch key {
	case "autoScroll", "soundEffects", "markdownRendering":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		switch key {
		case "autoScroll":
			s.AutoScroll = b
		case "soundEffects":
			s.SoundEffects = b
		case "markdownRendering":
			s.MarkdownRendering = b
		}

	case "theme":
		switch models.Theme(value) {
		case models.ThemeLight, models.ThemeDark, models.ThemeAuto:
			s.Theme = models.Theme(value)
		default:
			return fmt.Errorf("theme expects light, dark or auto, got %q", value)
		}

	case "fontSize":
		switch models.FontSize(value) {
		case models.FontSmall, models.FontMedium, models.FontLarge:
			s.FontSize = models.FontSize(value)
		default:
			return fmt.Errorf("fontSize expects small, medium or large, got %q", value)
		}

	case "model":
		if value == "" {
			return fmt.Errorf("model must not be empty")
		}
		s.Model = value

	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	ctrl.SaveSettings(s)
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", key, value)
	return nil
}
