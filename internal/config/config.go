// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultBackend    = "file"
	DefaultVolume     = 100
	DefaultToneVolume = 0.3
	DefaultSampleRate = 44100
	MinSampleRate     = 8000
)

// Config represents the hiit configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Audio   AudioConfig   `toml:"audio"`
	Export  ExportConfig  `toml:"export"`
}

// StorageConfig selects where trainings and settings are kept.
type StorageConfig struct {
	Backend string `toml:"backend" env:"HIIT_STORAGE_BACKEND"` // file, sqlite, memory
	Path    string `toml:"path" env:"HIIT_STORAGE_PATH"`       // Empty = XDG data dir
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled    bool    `toml:"enabled" env:"HIIT_AUDIO_ENABLED"`
	Volume     int     `toml:"volume" env:"HIIT_AUDIO_VOLUME"`           // Master volume, 0-100
	ToneVolume float64 `toml:"tone_volume" env:"HIIT_AUDIO_TONE_VOLUME"` // Envelope start, 0.0-1.0
	SampleRate int     `toml:"sample_rate" env:"HIIT_AUDIO_SAMPLE_RATE"`
}

// ExportConfig holds export options.
type ExportConfig struct {
	Dir string `toml:"dir" env:"HIIT_EXPORT_DIR"` // Empty = current directory
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: DefaultBackend,
		},
		Audio: AudioConfig{
			Enabled:    true,
			Volume:     DefaultVolume,
			ToneVolume: DefaultToneVolume,
			SampleRate: DefaultSampleRate,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "hiit", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "hiit")
}

// StoragePath returns the configured storage path, or the default file for
// the configured backend inside dataDir (DataPath() when empty).
func (c *Config) StoragePath(dataDir string) string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if dataDir == "" {
		dataDir = DataPath()
	}
	if c.Storage.Backend == "sqlite" {
		return filepath.Join(dataDir, "storage.db")
	}
	return filepath.Join(dataDir, "storage.json")
}

// LoadConfig loads configuration from the specified path, then applies
// HIIT_* environment overrides.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No config file, use defaults
	default:
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option ranges.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend must be file, sqlite or memory, got %q", c.Storage.Backend)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("audio.volume must be 0-100, got %d", c.Audio.Volume)
	}
	if c.Audio.ToneVolume < 0 || c.Audio.ToneVolume > 1 {
		return fmt.Errorf("audio.tone_volume must be 0.0-1.0, got %g", c.Audio.ToneVolume)
	}
	if c.Audio.SampleRate < MinSampleRate {
		return fmt.Errorf("audio.sample_rate must be at least %d, got %d", MinSampleRate, c.Audio.SampleRate)
	}
	return nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir creates dir, or DataPath() when dir is empty, if it doesn't
// exist.
func EnsureDataDir(dir string) error {
	if dir == "" {
		dir = DataPath()
	}
	if dir == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(dir, 0755)
}
