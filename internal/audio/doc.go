// Package audio synthesizes the short tones an interval timer uses as cues.
// Tones come from a fixed preset registry or explicit parameters, are shaped
// by an exponential decay envelope, and are played through the beep library.
// Playback is best-effort: failures are logged and never reach the caller.
package audio
