package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hiit/internal/audio"
	"github.com/jmylchreest/hiit/internal/model"
)

var settingsOpts struct {
	json bool
}

// settingsCmd represents the settings command group.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change app settings",
	Long: `Show and change the stored app settings.

Use 'hiit settings show' to print the event to sound mapping.
Use 'hiit settings set <event> <preset>' to change the sound for an event.
Use 'hiit settings reset' to restore the default sounds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing settings
		return settingsShowRun(cmd, args)
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show app settings",
	Args:  cobra.NoArgs,
	RunE:  settingsShowRun,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <event> <preset>",
	Short: "Set the sound preset for a timer event",
	Long: `Set the sound preset for a timer event.

Examples:
  hiit settings set midpoint beep_low
  hiit settings set transition bell`,
	Args: cobra.ExactArgs(2),
	RunE: settingsSetRun,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default sound presets",
	Long: `Restore the default sound presets. Other stored settings are kept.`,
	Args:  cobra.NoArgs,
	RunE:  settingsResetRun,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)

	for _, cmd := range []*cobra.Command{settingsCmd, settingsShowCmd} {
		cmd.Flags().BoolVar(&settingsOpts.json, "json", false,
			"Print the stored settings as JSON")
	}
}

func settingsShowRun(cmd *cobra.Command, args []string) error {
	settings := records.LoadAppSettings()

	if settingsOpts.json {
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printSoundConfig(cmd, settings.SoundConfig)
	if n := len(settings.Extra); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d other setting(s) stored, use --json to view\n", n)
	}
	return nil
}

func settingsSetRun(cmd *cobra.Command, args []string) error {
	event, err := audio.ParseEvent(args[0])
	if err != nil {
		return err
	}

	settings := records.LoadAppSettings()
	sounds, err := audio.SetPreset(settings.SoundConfig, event, args[1])
	if err != nil {
		return fmt.Errorf("%w (see 'hiit sounds list')", err)
	}
	settings.SoundConfig = sounds

	if err := records.SaveAppSettings(settings); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s sound set to %s\n", event, args[1])
	return nil
}

func settingsResetRun(cmd *cobra.Command, args []string) error {
	settings := records.LoadAppSettings()
	settings.SoundConfig = model.DefaultSoundConfig()

	if err := records.SaveAppSettings(settings); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Sound settings reset to defaults")
	printSoundConfig(cmd, settings.SoundConfig)
	return nil
}

// printSoundConfig prints the event to preset mapping.
func printSoundConfig(cmd *cobra.Command, sounds model.SoundConfig) {
	labelStyle := lipgloss.NewStyle().
		Width(12).
		Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	for _, e := range audio.Events {
		key := audio.PresetFor(sounds, e)
		name := "unknown preset"
		if p, ok := audio.Lookup(key); ok {
			name = p.Name
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%s)\n",
			labelStyle.Render(string(e)), keyStyle.Render(key), name)
	}
}
