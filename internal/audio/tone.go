package audio

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
)

// Waveform is the oscillator shape of a tone.
type Waveform string

// Supported waveforms. The empty Waveform plays as WaveSine.
const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
	WaveTriangle Waveform = "triangle"
)

// Envelope constants.
const (
	// DefaultVolume is the starting gain of a tone.
	DefaultVolume = 0.3

	// FloorGain is the gain the envelope decays to by the end of a tone.
	FloorGain = 0.01
)

// Tone errors.
var (
	ErrUnknownWaveform  = errors.New("unknown waveform")
	ErrInvalidFrequency = errors.New("frequency must be positive and below the Nyquist limit")
	ErrInvalidDuration  = errors.New("duration must be positive")
)

// ParseWaveform parses a waveform name. An empty name is sine.
func ParseWaveform(s string) (Waveform, error) {
	switch w := Waveform(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WaveSine, nil
	case WaveSine, WaveSquare, WaveSawtooth, WaveTriangle:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWaveform, s)
	}
}

func (w Waveform) orDefault() Waveform {
	if w == "" {
		return WaveSine
	}
	return w
}

// String returns the waveform name.
func (w Waveform) String() string {
	return string(w.orDefault())
}

// oscillator returns an endless beep generator for the waveform.
func (w Waveform) oscillator(sr beep.SampleRate, freq float64) (beep.Streamer, error) {
	switch w.orDefault() {
	case WaveSquare:
		return generators.SquareTone(sr, freq)
	case WaveSawtooth:
		return generators.SawtoothTone(sr, freq)
	case WaveTriangle:
		return generators.TriangleTone(sr, freq)
	default:
		return generators.SineTone(sr, freq)
	}
}

// Tone describes a single synthesized tone.
type Tone struct {
	Frequency float64 // Hz
	Duration  time.Duration
	Wave      Waveform
	Volume    float64 // Starting gain, 0.0 to 1.0
}

// Validate checks the tone can be synthesized at the given sample rate.
func (t Tone) Validate(sr beep.SampleRate) error {
	if t.Frequency <= 0 || t.Frequency >= float64(sr)/2 {
		return fmt.Errorf("%w: %g Hz", ErrInvalidFrequency, t.Frequency)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, t.Duration)
	}
	if _, err := ParseWaveform(string(t.Wave)); err != nil {
		return err
	}
	return nil
}

// Synthesize builds the synthesis graph for a tone: a beep tone generator,
// shaped by an exponential envelope from Volume down to FloorGain, cut at
// Duration.
func Synthesize(t Tone, sr beep.SampleRate) (beep.Streamer, error) {
	if err := t.Validate(sr); err != nil {
		return nil, err
	}

	n := sr.N(t.Duration)
	if n < 1 {
		n = 1
	}

	osc, err := t.Wave.oscillator(sr, t.Frequency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrequency, err)
	}
	env := newEnvelope(osc, clampVolume(t.Volume), n)

	return beep.Take(n, env), nil
}

// envelope multiplies its source by a gain that decays geometrically per sample,
// reaching FloorGain after n samples.
type envelope struct {
	src   beep.Streamer
	gain  float64
	ratio float64
}

func newEnvelope(src beep.Streamer, volume float64, n int) *envelope {
	if volume <= 0 {
		return &envelope{src: src}
	}

	// A ramp that starts at or below the floor holds its level.
	ratio := 1.0
	if volume > FloorGain {
		ratio = math.Pow(FloorGain/volume, 1/float64(n))
	}

	return &envelope{src: src, gain: volume, ratio: ratio}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.src.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] *= e.gain
		samples[i][1] *= e.gain
		e.gain *= e.ratio
	}
	return n, ok
}

func (e *envelope) Err() error { return e.src.Err() }

func clampVolume(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
