package audio

import (
	"log/slog"
	"time"

	"github.com/gopxl/beep/v2"
)

// Output is where synthesized tones are sent.
type Output interface {
	// SampleRate is the rate tones must be synthesized at.
	SampleRate() beep.SampleRate

	// Play starts playback of a tone's stream. It must not block for the
	// length of the tone.
	Play(t Tone, s beep.Streamer) error
}

// Player plays preset and custom tones. It holds no state between calls:
// every tone gets its own synthesis graph.
type Player struct {
	logger *slog.Logger
	out    Output
}

// NewPlayer creates a player that sends tones to out.
func NewPlayer(out Output, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		logger: logger,
		out:    out,
	}
}

// PlayPreset plays the preset with the given key at the given starting volume.
// Unknown keys are logged and ignored.
func (p *Player) PlayPreset(key string, volume float64) {
	preset, ok := Lookup(key)
	if !ok {
		p.logger.Warn("sound preset not found", "preset", key)
		return
	}

	t := preset.Tone()
	t.Volume = volume
	p.play(t, "preset", key)
}

// PlayCustom plays a tone with explicit parameters.
func (p *Player) PlayCustom(frequency float64, duration time.Duration, wave Waveform, volume float64) {
	p.play(Tone{
		Frequency: frequency,
		Duration:  duration,
		Wave:      wave,
		Volume:    volume,
	}, "tone", "custom")
}

func (p *Player) play(t Tone, attrs ...any) {
	if p.out == nil {
		p.logger.Debug("no audio output, skipping tone", attrs...)
		return
	}

	streamer, err := Synthesize(t, p.out.SampleRate())
	if err != nil {
		p.logger.Warn("invalid tone", append(attrs, "error", err)...)
		return
	}

	if err := p.out.Play(t, streamer); err != nil {
		p.logger.Error("audio playback failed", append(attrs, "error", err)...)
		return
	}

	p.logger.Debug("playing tone",
		"frequency", t.Frequency,
		"duration", t.Duration,
		"wave", t.Wave.String(),
		"volume", t.Volume)
}
