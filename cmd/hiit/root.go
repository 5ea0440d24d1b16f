// Package main provides the CLI entrypoint for hiit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hiit/internal/audio"
	"github.com/jmylchreest/hiit/internal/config"
	"github.com/jmylchreest/hiit/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// How long to let queued tones finish before exiting.
const drainTimeout = 5 * time.Second

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		storage    string
		dataDir    string
	}
	logger *slog.Logger

	kv          store.KV
	records     *store.Records
	storagePath string

	// Set once a command plays sound through the speaker
	speakerOut *audio.SpeakerOutput
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hiit",
	Short: "Sound cues and data exchange for HIIT interval training",
	Long: `hiit plays the sound cues of an interval timer and manages its stored
trainings and settings.

Sound cues are short synthesized tones. Each timer event (midpoint,
countdown, transition) is mapped to one of the built-in presets in the
app settings.

Trainings and settings can be exported to JSON files and imported back,
separately or together in one unified file.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if globalOpts.storage != "" {
			cfg.Storage.Backend = globalOpts.storage
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		if cfg.Storage.Backend != string(store.BackendMemory) {
			if err := config.EnsureDataDir(globalOpts.dataDir); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}

		storagePath = cfg.StoragePath(globalOpts.dataDir)
		kv, err = store.Open(store.Backend(cfg.Storage.Backend), storagePath)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		logger.Debug("storage opened", "backend", cfg.Storage.Backend, "path", storagePath)

		records = store.NewRecords(kv, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if speakerOut != nil {
			ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			if err := speakerOut.Wait(ctx); err != nil {
				logger.Warn("sound playback did not finish", "error", err)
			}
			cancel()
			speakerOut.Close()
		}

		// Cleanup store
		if kv != nil {
			err := kv.Close()
			kv = nil
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/hiit/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.storage, "storage", "",
		"Storage backend: file, sqlite or memory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.dataDir, "data-dir", "",
		"Directory for the storage file (default: ~/.local/share/hiit)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// newPlayer returns a player on the speaker, or a silent one when audio is
// disabled in the config.
func newPlayer() *audio.Player {
	sampleRate := beep.SampleRate(cfg.Audio.SampleRate)
	if !cfg.Audio.Enabled {
		logger.Debug("audio disabled, cues are silent")
		return audio.NewPlayer(audio.Discard{Rate: sampleRate}, logger)
	}

	speakerOut = audio.NewSpeakerOutput(sampleRate, logger)
	speakerOut.SetGain(float64(cfg.Audio.Volume) / 100)
	return audio.NewPlayer(speakerOut, logger)
}

// dataDir returns the directory holding hiit's own files.
func dataDir() string {
	if globalOpts.dataDir != "" {
		return globalOpts.dataDir
	}
	return config.DataPath()
}
