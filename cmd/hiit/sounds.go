package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gopxl/beep/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hiit/internal/audio"
)

var soundsOpts struct {
	volume     float64
	frequency  float64
	duration   time.Duration
	wave       string
	output     string
	sampleRate int
}

// soundsCmd represents the sounds command group.
var soundsCmd = &cobra.Command{
	Use:   "sounds",
	Short: "List, play and render sound presets",
	Long: `List, play and render the built-in sound presets.

Use 'hiit sounds list' to show the presets and which events use them.
Use 'hiit sounds play <key>' to hear a preset.
Use 'hiit sounds custom' to play a tone with explicit parameters.
Use 'hiit sounds render <key> -o out.wav' to write a preset to a WAV file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to listing
		return soundsListRun(cmd, args)
	},
}

var soundsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sound presets",
	Args:  cobra.NoArgs,
	RunE:  soundsListRun,
}

var soundsPlayCmd = &cobra.Command{
	Use:   "play <key>",
	Short: "Play a sound preset",
	Long: `Play a sound preset.

Examples:
  hiit sounds play chime
  hiit sounds play buzz_long --volume 0.8`,
	Args: cobra.ExactArgs(1),
	RunE: soundsPlayRun,
}

var soundsCustomCmd = &cobra.Command{
	Use:   "custom",
	Short: "Play a tone with explicit parameters",
	Long: `Play a tone with explicit frequency, duration and waveform.

Examples:
  hiit sounds custom --freq 440 --duration 500ms
  hiit sounds custom --freq 220 --duration 1s --wave sawtooth`,
	Args: cobra.NoArgs,
	RunE: soundsCustomRun,
}

var soundsRenderCmd = &cobra.Command{
	Use:   "render <key>",
	Short: "Write a sound preset to a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE:  soundsRenderRun,
}

func init() {
	rootCmd.AddCommand(soundsCmd)
	soundsCmd.AddCommand(soundsListCmd)
	soundsCmd.AddCommand(soundsPlayCmd)
	soundsCmd.AddCommand(soundsCustomCmd)
	soundsCmd.AddCommand(soundsRenderCmd)

	for _, cmd := range []*cobra.Command{soundsPlayCmd, soundsCustomCmd, soundsRenderCmd} {
		cmd.Flags().Float64Var(&soundsOpts.volume, "volume", audio.DefaultVolume,
			"Starting volume of the tone (0.0-1.0; default from config)")
	}

	soundsCustomCmd.Flags().Float64Var(&soundsOpts.frequency, "freq", 440,
		"Frequency in Hz")
	soundsCustomCmd.Flags().DurationVar(&soundsOpts.duration, "duration", 300*time.Millisecond,
		"Tone duration")
	soundsCustomCmd.Flags().StringVar(&soundsOpts.wave, "wave", string(audio.WaveSine),
		"Waveform (sine, square, sawtooth, triangle)")

	soundsRenderCmd.Flags().StringVarP(&soundsOpts.output, "output", "o", "",
		"Output WAV file (default: <key>.wav)")
	soundsRenderCmd.Flags().IntVar(&soundsOpts.sampleRate, "sample-rate", 0,
		"Sample rate of the WAV file (default from config)")
}

func soundsListRun(cmd *cobra.Command, args []string) error {
	// Events using each preset
	sounds := records.LoadAppSettings().SoundConfig
	usedBy := make(map[string][]string)
	for _, e := range audio.Events {
		key := audio.PresetFor(sounds, e)
		usedBy[key] = append(usedBy[key], string(e))
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	widths := []int{13, 13, 9, 10, 10}
	cell := func(style lipgloss.Style, i int, s string) string {
		return style.Width(widths[i]).Render(s)
	}

	var b strings.Builder
	b.WriteString(cell(headerStyle, 0, "KEY"))
	b.WriteString(cell(headerStyle, 1, "NAME"))
	b.WriteString(cell(headerStyle, 2, "FREQ"))
	b.WriteString(cell(headerStyle, 3, "DURATION"))
	b.WriteString(cell(headerStyle, 4, "WAVE"))
	b.WriteString(headerStyle.Render("EVENTS"))
	b.WriteString("\n")

	for _, p := range audio.Presets() {
		t := p.Tone()
		b.WriteString(cell(keyStyle, 0, p.Key))
		b.WriteString(cell(lipgloss.NewStyle(), 1, p.Name))
		b.WriteString(cell(lipgloss.NewStyle(), 2, fmt.Sprintf("%g Hz", p.Frequency)))
		b.WriteString(cell(lipgloss.NewStyle(), 3, p.Duration.String()))
		b.WriteString(cell(dimStyle, 4, t.Wave.String()))
		b.WriteString(strings.Join(usedBy[p.Key], ", "))
		b.WriteString("\n")
	}

	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}

func soundsPlayRun(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !audio.IsPreset(key) {
		return fmt.Errorf("unknown sound preset %q (see 'hiit sounds list')", key)
	}

	player := newPlayer()
	player.PlayPreset(key, toneVolume(cmd))
	return nil
}

func soundsCustomRun(cmd *cobra.Command, args []string) error {
	wave, err := audio.ParseWaveform(soundsOpts.wave)
	if err != nil {
		return err
	}

	tone := audio.Tone{
		Frequency: soundsOpts.frequency,
		Duration:  soundsOpts.duration,
		Wave:      wave,
		Volume:    toneVolume(cmd),
	}
	if err := tone.Validate(beep.SampleRate(cfg.Audio.SampleRate)); err != nil {
		return err
	}

	player := newPlayer()
	player.PlayCustom(tone.Frequency, tone.Duration, tone.Wave, tone.Volume)
	return nil
}

func soundsRenderRun(cmd *cobra.Command, args []string) error {
	key := args[0]
	preset, ok := audio.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown sound preset %q (see 'hiit sounds list')", key)
	}

	sampleRate := cfg.Audio.SampleRate
	if soundsOpts.sampleRate > 0 {
		sampleRate = soundsOpts.sampleRate
	}

	path := soundsOpts.output
	if path == "" {
		path = key + ".wav"
	}

	tone := preset.Tone()
	tone.Volume = toneVolume(cmd)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := audio.Render(f, tone, beep.SampleRate(sampleRate)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to render %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s to %s\n", key, path)
	return nil
}

// toneVolume returns the --volume flag, or the configured tone volume when
// the flag was not given.
func toneVolume(cmd *cobra.Command) float64 {
	if cmd.Flags().Changed("volume") {
		return soundsOpts.volume
	}
	return cfg.Audio.ToneVolume
}
