// Package vad implements frame-synchronous voice-activity smoothing: it
// converts a raw per-frame speech/non-speech probability stream into stable
// speech segments and a silence-gated audio buffer.
//
// The package is built from three pieces that mirror the data flow:
//
//   - [Smoother] debounces the per-frame voiced signal with onset and
//     hangover counters and replays a short pre-roll buffer when speech is
//     confirmed.
//   - [Accumulator] assembles the smoother's emissions into one contiguous
//     output buffer plus a list of [Segment] boundaries in the output
//     timeline.
//   - [Pipeline] drives framing, classification, smoothing, and accumulation
//     for a whole clip and applies the caller-level policies (silent-clip
//     fallback, short-output padding, optional spectrum profile).
//
// A Smoother or Accumulator instance belongs to exactly one clip. Processing
// is strictly single-threaded and in frame-arrival order — each decision
// depends on the state left by the previous frame. Callers that process
// multiple clips concurrently must create one instance per clip.
package vad

import "fmt"

// Defaults for the smoothing configuration. These match the tuning of the
// original Handy preprocessing pipeline at 16 kHz with 30 ms frames.
const (
	DefaultSampleRate     = 16000
	DefaultFrameMillis    = 30
	DefaultThreshold      = 0.3
	DefaultOnsetFrames    = 2
	DefaultHangoverFrames = 15
	DefaultPrefillFrames  = 15
)

// Config holds the parameters for one smoothing run. Immutable once a
// Smoother has been created from it.
type Config struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate int

	// FrameSamples is the fixed frame length in samples
	// (SampleRate × frame duration; 480 for 30 ms at 16 kHz).
	FrameSamples int

	// Threshold is the probability cutoff above which a frame counts as
	// voiced. The comparison is a strict greater-than: a probability exactly
	// equal to Threshold is not voiced.
	Threshold float64

	// OnsetFrames is the number of consecutive voiced frames required to
	// confirm speech start.
	OnsetFrames int

	// HangoverFrames is the number of consecutive unvoiced frames tolerated
	// before speech end is confirmed.
	HangoverFrames int

	// PrefillFrames is the number of most-recent frames retained before
	// confirmed onset, replayed as lead-in when speech is confirmed.
	PrefillFrames int
}

// DefaultConfig returns the default smoothing configuration: 16 kHz, 30 ms
// frames, threshold 0.3, onset 2, hangover 15, prefill 15.
func DefaultConfig() Config {
	return Config{
		SampleRate:     DefaultSampleRate,
		FrameSamples:   DefaultSampleRate * DefaultFrameMillis / 1000,
		Threshold:      DefaultThreshold,
		OnsetFrames:    DefaultOnsetFrames,
		HangoverFrames: DefaultHangoverFrames,
		PrefillFrames:  DefaultPrefillFrames,
	}
}

// Validate checks that cfg contains a coherent set of values.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("vad: sample rate %d is invalid", c.SampleRate)
	}
	if c.FrameSamples <= 0 {
		return fmt.Errorf("vad: frame size %d is invalid", c.FrameSamples)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("vad: threshold %.3f is out of range [0, 1]", c.Threshold)
	}
	if c.OnsetFrames < 1 {
		return fmt.Errorf("vad: onset frames %d must be at least 1", c.OnsetFrames)
	}
	if c.HangoverFrames < 0 {
		return fmt.Errorf("vad: hangover frames %d must not be negative", c.HangoverFrames)
	}
	if c.PrefillFrames < 0 {
		return fmt.Errorf("vad: prefill frames %d must not be negative", c.PrefillFrames)
	}
	return nil
}

// Segment is a confirmed-speech interval in the output (silence-gated)
// timeline. Start and End are offsets in seconds; segments produced by an
// [Accumulator] are ordered by Start and non-overlapping.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }
