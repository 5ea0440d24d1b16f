package audio

import (
	"slices"
	"time"
)

// Preset is a named, fixed tone definition.
type Preset struct {
	Key       string
	Name      string
	Frequency float64 // Hz
	Duration  time.Duration
	Wave      Waveform
}

// Tone returns the tone this preset plays.
func (p Preset) Tone() Tone {
	return Tone{
		Frequency: p.Frequency,
		Duration:  p.Duration,
		Wave:      p.Wave.orDefault(),
	}
}

// presets is the registry, in display order.
var presets = []Preset{
	{Key: "beep_high", Name: "Beep High", Frequency: 1200, Duration: 200 * time.Millisecond},
	{Key: "beep_medium", Name: "Beep Medium", Frequency: 800, Duration: 200 * time.Millisecond},
	{Key: "beep_low", Name: "Beep Low", Frequency: 400, Duration: 200 * time.Millisecond},
	{Key: "chime", Name: "Chime", Frequency: 1000, Duration: 400 * time.Millisecond, Wave: WaveSine},
	{Key: "bell", Name: "Bell", Frequency: 1500, Duration: 500 * time.Millisecond, Wave: WaveSine},
	{Key: "ping", Name: "Ping", Frequency: 2000, Duration: 150 * time.Millisecond, Wave: WaveSine},
	{Key: "boop", Name: "Boop", Frequency: 600, Duration: 250 * time.Millisecond, Wave: WaveSine},
	{Key: "ding", Name: "Ding", Frequency: 1100, Duration: 300 * time.Millisecond, Wave: WaveSine},
	{Key: "buzz_short", Name: "Buzz Short", Frequency: 900, Duration: 100 * time.Millisecond, Wave: WaveSquare},
	{Key: "buzz_long", Name: "Buzz Long", Frequency: 800, Duration: 300 * time.Millisecond, Wave: WaveSquare},
}

var presetIndex = func() map[string]int {
	idx := make(map[string]int, len(presets))
	for i, p := range presets {
		idx[p.Key] = i
	}
	return idx
}()

// Presets returns all presets in display order.
// The returned slice is a copy.
func Presets() []Preset {
	return slices.Clone(presets)
}

// Lookup returns the preset with the given key.
func Lookup(key string) (Preset, bool) {
	i, ok := presetIndex[key]
	if !ok {
		return Preset{}, false
	}
	return presets[i], true
}

// IsPreset reports whether key names a preset.
func IsPreset(key string) bool {
	_, ok := presetIndex[key]
	return ok
}
