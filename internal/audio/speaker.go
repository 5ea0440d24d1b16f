package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// DefaultSampleRate is used when no sample rate is configured.
const DefaultSampleRate = beep.SampleRate(44100)

// SpeakerOutput plays tones on the system speaker.
type SpeakerOutput struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Master gain applied on top of each tone's envelope (0.0 to 1.0)
	gain float64

	sampleRate  beep.SampleRate
	initialized bool

	// Tracks tones still playing so callers can wait before exiting
	playing sync.WaitGroup
}

// NewSpeakerOutput creates a speaker output. The speaker itself is opened on
// the first Play.
func NewSpeakerOutput(sampleRate beep.SampleRate, logger *slog.Logger) *SpeakerOutput {
	if logger == nil {
		logger = slog.Default()
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return &SpeakerOutput{
		logger:     logger,
		gain:       1.0,
		sampleRate: sampleRate,
	}
}

// SampleRate returns the speaker sample rate.
func (o *SpeakerOutput) SampleRate() beep.SampleRate {
	return o.sampleRate
}

// SetGain sets the master gain (0.0 to 1.0).
func (o *SpeakerOutput) SetGain(gain float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}
	o.gain = gain
	o.logger.Debug("master gain set", "gain", gain)
}

// Play queues a tone on the speaker and returns immediately.
func (o *SpeakerOutput) Play(t Tone, s beep.Streamer) error {
	if err := o.ensureInitialized(); err != nil {
		return err
	}

	o.mu.Lock()
	gain := o.gain
	o.mu.Unlock()

	if gain < 1.0 {
		s = &effects.Volume{
			Streamer: s,
			Base:     10,
			Volume:   gainToBels(gain),
			Silent:   gain == 0,
		}
	}

	o.playing.Add(1)
	speaker.Play(beep.Seq(s, beep.Callback(o.playing.Done)))
	return nil
}

// Wait blocks until every queued tone has finished or ctx is done.
func (o *SpeakerOutput) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.playing.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Close releases the speaker.
func (o *SpeakerOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		speaker.Close()
		o.initialized = false
	}
	o.logger.Debug("speaker closed")
}

// ensureInitialized opens the speaker if not already done.
func (o *SpeakerOutput) ensureInitialized() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}

	// Small buffer keeps cue latency low
	bufferSize := o.sampleRate.N(50 * time.Millisecond)

	if err := speaker.Init(o.sampleRate, bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	o.initialized = true
	o.logger.Debug("speaker initialized", "sample_rate", o.sampleRate)
	return nil
}

// gainToBels converts a linear gain to the base-10 exponent effects.Volume expects.
func gainToBels(gain float64) float64 {
	if gain <= 0 {
		return -10
	}
	return math.Log10(gain)
}

// Discard is an Output that accepts tones and drops them. It is used when
// audio is disabled.
type Discard struct {
	Rate beep.SampleRate
}

// SampleRate returns the configured rate or DefaultSampleRate.
func (d Discard) SampleRate() beep.SampleRate {
	if d.Rate <= 0 {
		return DefaultSampleRate
	}
	return d.Rate
}

// Play drops the tone.
func (d Discard) Play(Tone, beep.Streamer) error { return nil }
