// Package model defines the records hiit persists and exchanges.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"slices"
)

// Default sound preset keys per timer event.
const (
	DefaultMidpointSound   = "beep_medium"
	DefaultCountdownSound  = "beep_high"
	DefaultTransitionSound = "chime"
)

// soundConfigField is the JSON name of the sound config inside AppSettings.
const soundConfigField = "soundConfig"

// ErrNotObject is returned when settings JSON is not an object.
var ErrNotObject = errors.New("settings must be a JSON object")

// SoundConfig selects a sound preset for each timer event.
type SoundConfig struct {
	Midpoint   string `json:"midpoint"`   // Halfway through an item
	Countdown  string `json:"countdown"`  // Last seconds of an item
	Transition string `json:"transition"` // Phase change
}

// DefaultSoundConfig returns the built-in sound selection.
func DefaultSoundConfig() SoundConfig {
	return SoundConfig{
		Midpoint:   DefaultMidpointSound,
		Countdown:  DefaultCountdownSound,
		Transition: DefaultTransitionSound,
	}
}

// withDefaults fills empty keys from the default config.
func (c SoundConfig) withDefaults() SoundConfig {
	def := DefaultSoundConfig()
	if c.Midpoint == "" {
		c.Midpoint = def.Midpoint
	}
	if c.Countdown == "" {
		c.Countdown = def.Countdown
	}
	if c.Transition == "" {
		c.Transition = def.Transition
	}
	return c
}

// AppSettings is the persisted application settings object.
// Fields other than soundConfig belong to the UI and are carried through untouched.
type AppSettings struct {
	SoundConfig SoundConfig

	// Extra holds every other top-level field, raw.
	Extra map[string]json.RawMessage
}

// DefaultAppSettings returns settings holding only the default sound config.
func DefaultAppSettings() AppSettings {
	return AppSettings{SoundConfig: DefaultSoundConfig()}
}

// Normalize fills a missing or partial sound config with defaults.
func (s AppSettings) Normalize() AppSettings {
	s.SoundConfig = s.SoundConfig.withDefaults()
	return s
}

// IsZero reports whether the settings carry no data at all.
func (s AppSettings) IsZero() bool {
	return s.SoundConfig == (SoundConfig{}) && len(s.Extra) == 0
}

// MarshalJSON writes soundConfig first, then extra fields in key order.
func (s AppSettings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	sc, err := json.Marshal(s.SoundConfig)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + soundConfigField + `":`)
	buf.Write(sc)

	for _, key := range slices.Sorted(maps.Keys(s.Extra)) {
		if key == soundConfigField {
			continue
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		raw := s.Extra[key]
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(raw)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts any JSON object. A soundConfig that is absent, not an
// object, or holds non-string keys leaves those events empty for Normalize to
// fill; the other fields are kept either way.
func (s *AppSettings) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ErrNotObject
		}
		return err
	}
	if fields == nil {
		return ErrNotObject
	}

	out := AppSettings{}
	if raw, ok := fields[soundConfigField]; ok {
		out.SoundConfig = decodeSoundConfig(raw)
		delete(fields, soundConfigField)
	}
	if len(fields) > 0 {
		out.Extra = fields
	}

	*s = out
	return nil
}

// decodeSoundConfig reads the preset keys it can from raw.
func decodeSoundConfig(raw json.RawMessage) SoundConfig {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return SoundConfig{}
	}

	str := func(name string) string {
		var v string
		if err := json.Unmarshal(keys[name], &v); err != nil {
			return ""
		}
		return v
	}

	return SoundConfig{
		Midpoint:   str("midpoint"),
		Countdown:  str("countdown"),
		Transition: str("transition"),
	}
}
