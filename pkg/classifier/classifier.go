// Package classifier defines the Engine interface for per-frame speech
// probability detectors.
//
// A classifier engine wraps a frame-level speech detector (e.g., Silero VAD
// or a simple energy detector) and surfaces it as a stateful, per-clip
// session. Each session maintains its own internal state (model hidden state,
// adaptation history) so that multiple clips can be processed independently.
//
// Classification is synchronous: Classify returns the speech probability for
// one frame before the next frame is submitted, matching the frame-ordered
// smoothing loop that consumes it.
//
// Implementations must be safe for concurrent use across different sessions.
// A single Session must not be shared across goroutines unless the
// implementation explicitly documents thread safety for that type.
package classifier

import "errors"

// ErrFrameLength is returned by Classify when the supplied frame does not
// have exactly the configured number of samples. Framing is the caller's
// contract; a short or long frame is a configuration/input error for the
// whole clip, not a per-frame condition to recover from.
var ErrFrameLength = errors.New("classifier: frame length does not match configured frame size")

// ErrProbabilityRange is returned when an engine produces a probability
// outside [0, 1]. The smoothing pipeline treats this as a classifier fault
// and aborts the clip rather than guessing intent by clamping.
var ErrProbabilityRange = errors.New("classifier: probability outside [0, 1]")

// Config holds the parameters for a classifier session.
type Config struct {
	// SampleRate is the audio sample rate in Hz. Must match the rate of the
	// frames passed to Classify. VAD models typically require 16000.
	SampleRate int

	// FrameSamples is the fixed frame length in samples. Classify returns
	// [ErrFrameLength] if a frame of any other length is supplied.
	FrameSamples int
}

// Session is an active classification session for a single clip. Each
// session maintains its own detection state; Reset clears this state without
// closing the session.
//
// A Session must not be shared between goroutines.
type Session interface {
	// Classify returns the speech probability in [0, 1] for one frame of
	// mono float32 samples. The frame must have exactly the configured
	// FrameSamples samples. Deterministic input must yield deterministic
	// output.
	Classify(frame []float32) (float64, error)

	// Reset clears accumulated state (model hidden state, history) so the
	// session can process a new clip from scratch.
	Reset()

	// Close releases resources associated with the session. Calling Close
	// more than once is safe and returns nil.
	Close() error
}

// Engine is the factory for classifier sessions. It is the top-level
// interface implemented by each detector backend.
//
// Implementations must be safe for concurrent use: multiple goroutines may
// call NewSession simultaneously to create independent sessions.
type Engine interface {
	// NewSession creates a session with the given configuration. Returns an
	// error if the configuration is unsupported (sample rate, frame size) or
	// if the engine cannot allocate resources for the session.
	NewSession(cfg Config) (Session, error)
}

// CheckFrame validates that frame has exactly cfg.FrameSamples samples.
// Engines call this at the top of Classify.
func CheckFrame(cfg Config, frame []float32) error {
	if len(frame) != cfg.FrameSamples {
		return ErrFrameLength
	}
	return nil
}

// CheckProbability validates that p lies in [0, 1]. The pipeline calls this
// on every classifier output before feeding it to the smoother.
func CheckProbability(p float64) error {
	// Written so that NaN also fails the check.
	if !(p >= 0 && p <= 1) {
		return ErrProbabilityRange
	}
	return nil
}
