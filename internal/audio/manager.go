package audio

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jmylchreest/hiit/internal/model"
)

// Event is a timer moment that has a sound cue.
type Event string

// Timer events with configurable sounds.
const (
	EventMidpoint   Event = "midpoint"
	EventCountdown  Event = "countdown"
	EventTransition Event = "transition"
)

// Events lists all cue events.
var Events = []Event{EventMidpoint, EventCountdown, EventTransition}

// ParseEvent parses an event name.
func ParseEvent(s string) (Event, error) {
	switch e := Event(strings.ToLower(strings.TrimSpace(s))); e {
	case EventMidpoint, EventCountdown, EventTransition:
		return e, nil
	default:
		return "", fmt.Errorf("unknown event %q (want midpoint, countdown or transition)", s)
	}
}

// PresetFor returns the preset key configured for an event.
func PresetFor(cfg model.SoundConfig, e Event) string {
	switch e {
	case EventMidpoint:
		return cfg.Midpoint
	case EventCountdown:
		return cfg.Countdown
	case EventTransition:
		return cfg.Transition
	default:
		return ""
	}
}

// SetPreset returns cfg with the event's preset replaced.
func SetPreset(cfg model.SoundConfig, e Event, key string) (model.SoundConfig, error) {
	if !IsPreset(key) {
		return cfg, fmt.Errorf("unknown sound preset %q", key)
	}

	switch e {
	case EventMidpoint:
		cfg.Midpoint = key
	case EventCountdown:
		cfg.Countdown = key
	case EventTransition:
		cfg.Transition = key
	default:
		return cfg, fmt.Errorf("unknown event %q", e)
	}
	return cfg, nil
}

// Manager plays the sound configured for each timer event.
type Manager struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player *Player
	config model.SoundConfig
	volume float64
}

// NewManager creates a manager using cfg for event to preset mapping.
func NewManager(player *Player, cfg model.SoundConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		logger: logger,
		player: player,
		config: cfg,
		volume: DefaultVolume,
	}
}

// UpdateConfig replaces the sound configuration.
// This is called when stored settings change.
func (m *Manager) UpdateConfig(cfg model.SoundConfig) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.logger.Debug("sound config updated",
		"midpoint", cfg.Midpoint,
		"countdown", cfg.Countdown,
		"transition", cfg.Transition)
}

// Config returns the current sound configuration.
func (m *Manager) Config() model.SoundConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetVolume sets the starting gain of cue tones (0.0 to 1.0).
func (m *Manager) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clampVolume(volume)
}

// PlayForEvent plays the sound configured for the event.
func (m *Manager) PlayForEvent(e Event) {
	m.mu.RLock()
	key := PresetFor(m.config, e)
	volume := m.volume
	m.mu.RUnlock()

	if key == "" {
		m.logger.Debug("no sound configured for event", "event", e)
		return
	}

	m.player.PlayPreset(key, volume)
}
