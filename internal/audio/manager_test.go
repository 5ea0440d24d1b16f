package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hiit/internal/model"
)

func TestPresets(t *testing.T) {
	all := Presets()
	require.Len(t, all, 10)

	keys := make([]string, len(all))
	for i, p := range all {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{
		"beep_high", "beep_medium", "beep_low", "chime", "bell",
		"ping", "boop", "ding", "buzz_short", "buzz_long",
	}, keys)

	// Mutating the copy leaves the registry alone.
	all[0].Frequency = 1
	p, ok := Lookup("beep_high")
	require.True(t, ok)
	assert.Equal(t, 1200.0, p.Frequency)
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("buzz_long")
	require.True(t, ok)
	assert.Equal(t, 800.0, p.Frequency)
	assert.Equal(t, 300*time.Millisecond, p.Duration)
	assert.Equal(t, WaveSquare, p.Tone().Wave)

	p, ok = Lookup("beep_low")
	require.True(t, ok)
	assert.Equal(t, WaveSine, p.Tone().Wave)

	_, ok = Lookup("missing")
	assert.False(t, ok)
}

func TestDefaultSoundConfigUsesPresets(t *testing.T) {
	cfg := model.DefaultSoundConfig()
	for _, e := range Events {
		assert.True(t, IsPreset(PresetFor(cfg, e)), "event %s", e)
	}
}

func TestManager_PlayForEvent(t *testing.T) {
	out := &recordingOutput{}
	m := NewManager(NewPlayer(out, quietLogger()), model.DefaultSoundConfig(), quietLogger())

	m.PlayForEvent(EventTransition)
	m.PlayForEvent(EventCountdown)

	require.Len(t, out.tones, 2)
	assert.Equal(t, 1000.0, out.tones[0].Frequency) // chime
	assert.Equal(t, 1200.0, out.tones[1].Frequency) // beep_high
	assert.Equal(t, DefaultVolume, out.tones[0].Volume)
}

func TestManager_UpdateConfig(t *testing.T) {
	out := &recordingOutput{}
	m := NewManager(NewPlayer(out, quietLogger()), model.DefaultSoundConfig(), quietLogger())

	cfg, err := SetPreset(m.Config(), EventMidpoint, "ping")
	require.NoError(t, err)
	m.UpdateConfig(cfg)
	m.SetVolume(0.8)

	m.PlayForEvent(EventMidpoint)

	require.Len(t, out.tones, 1)
	assert.Equal(t, 2000.0, out.tones[0].Frequency)
	assert.Equal(t, 0.8, out.tones[0].Volume)
}

func TestManager_EmptyPresetSkipped(t *testing.T) {
	out := &recordingOutput{}
	m := NewManager(NewPlayer(out, quietLogger()), model.SoundConfig{}, quietLogger())

	m.PlayForEvent(EventMidpoint)

	assert.Empty(t, out.tones)
}

func TestSetPreset(t *testing.T) {
	cfg := model.DefaultSoundConfig()

	_, err := SetPreset(cfg, EventCountdown, "kazoo")
	assert.Error(t, err)

	cfg, err = SetPreset(cfg, EventCountdown, "buzz_short")
	require.NoError(t, err)
	assert.Equal(t, "buzz_short", cfg.Countdown)
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent(" Countdown ")
	require.NoError(t, err)
	assert.Equal(t, EventCountdown, e)

	_, err = ParseEvent("halfway")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	p, _ := Lookup("chime")
	tone := p.Tone()
	tone.Volume = DefaultVolume

	require.NoError(t, Render(f, tone, testRate))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	s, format, err := wav.Decode(f)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, testRate, format.SampleRate)
	assert.Equal(t, 2, format.NumChannels)
	assert.Equal(t, testRate.N(400*time.Millisecond), s.Len())
}

func TestRender_InvalidTone(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	require.NoError(t, err)
	defer f.Close()

	err = Render(f, Tone{Frequency: -1, Duration: time.Second}, testRate)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}
