package audio

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// Render synthesizes a tone and encodes it as a 16-bit stereo WAV file.
func Render(w io.WriteSeeker, t Tone, sr beep.SampleRate) error {
	if sr <= 0 {
		sr = DefaultSampleRate
	}

	streamer, err := Synthesize(t, sr)
	if err != nil {
		return err
	}

	format := beep.Format{
		SampleRate:  sr,
		NumChannels: 2,
		Precision:   2,
	}

	if err := wav.Encode(w, streamer, format); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return nil
}
