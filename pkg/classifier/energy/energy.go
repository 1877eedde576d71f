// Package energy implements a model-free speech probability classifier based
// on RMS frame energy.
//
// It is not a replacement for a neural VAD — it cannot tell speech from any
// other loud signal — but it needs no model file or runtime library, which
// makes it the default engine for tests and for environments where ONNX
// Runtime is unavailable.
package energy

import (
	"fmt"
	"math"

	"github.com/MrWong99/voicegate/pkg/classifier"
)

// Default RMS anchor points for mapping energy to a pseudo-probability.
// Frames at or below NoiseFloorRMS map to 0; frames at or above FullScaleRMS
// map to 1. Values in between map linearly.
const (
	// DefaultNoiseFloorRMS is roughly -50 dBFS, below typical room noise.
	DefaultNoiseFloorRMS = 0.003

	// DefaultFullScaleRMS is roughly -20 dBFS, a confidently loud frame.
	DefaultFullScaleRMS = 0.1
)

// Engine creates RMS-energy classifier sessions.
type Engine struct {
	// NoiseFloorRMS and FullScaleRMS override the default mapping anchors
	// when non-zero.
	NoiseFloorRMS float64
	FullScaleRMS  float64
}

// Compile-time assertion that Engine satisfies classifier.Engine.
var _ classifier.Engine = (*Engine)(nil)

// NewSession creates an energy session. The engine itself is stateless, so
// sessions are cheap and safe to create concurrently.
func (e *Engine) NewSession(cfg classifier.Config) (classifier.Session, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("energy: sample rate %d is invalid", cfg.SampleRate)
	}
	if cfg.FrameSamples <= 0 {
		return nil, fmt.Errorf("energy: frame size %d is invalid", cfg.FrameSamples)
	}
	floor := e.NoiseFloorRMS
	if floor <= 0 {
		floor = DefaultNoiseFloorRMS
	}
	full := e.FullScaleRMS
	if full <= floor {
		full = DefaultFullScaleRMS
	}
	return &session{cfg: cfg, floor: floor, full: full}, nil
}

type session struct {
	cfg   classifier.Config
	floor float64
	full  float64
}

var _ classifier.Session = (*session)(nil)

// Classify maps the RMS energy of the frame linearly onto [0, 1] between the
// configured noise floor and full-scale anchors.
func (s *session) Classify(frame []float32) (float64, error) {
	if err := classifier.CheckFrame(s.cfg, frame); err != nil {
		return 0, err
	}

	var sum float64
	for _, v := range frame {
		sum += float64(v) * float64(v)
	}
	rms := math.Sqrt(sum / float64(len(frame)))

	switch {
	case rms <= s.floor:
		return 0, nil
	case rms >= s.full:
		return 1, nil
	default:
		return (rms - s.floor) / (s.full - s.floor), nil
	}
}

// Reset is a no-op; the energy detector keeps no history between frames.
func (s *session) Reset() {}

// Close is a no-op.
func (s *session) Close() error { return nil }
