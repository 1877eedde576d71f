package vad

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrWong99/voicegate/pkg/audio"
	"github.com/MrWong99/voicegate/pkg/classifier"
	"github.com/MrWong99/voicegate/pkg/spectrum"
)

// Short-output padding policy: gated clips under padTriggerSeconds are
// padded with trailing silence to padTargetSeconds so downstream models see
// a minimum amount of audio.
const (
	padTriggerSeconds = 1.0
	padTargetSeconds  = 1.25
)

// Pipeline runs the full per-clip gating flow: fixed framing, per-frame
// classification, smoothing, accumulation, and the surrounding policies
// (silent-clip fallback, optional short-output padding, optional spectrum
// profile).
//
// A Pipeline is immutable after construction and safe for concurrent use;
// every Process call creates its own classifier session, Smoother, and
// Accumulator.
type Pipeline struct {
	cfg    Config
	engine classifier.Engine

	padShortClips bool
	spectrumCfg   *spectrum.Config
}

// PipelineOption is a functional option for configuring a Pipeline.
type PipelineOption func(*Pipeline)

// WithPadShortClips enables padding of gated output shorter than 1 s with
// trailing silence up to 1.25 s.
func WithPadShortClips() PipelineOption {
	return func(p *Pipeline) { p.padShortClips = true }
}

// WithSpectrum enables the loudness profile on the final (possibly gated)
// audio, computed with the given parameters. The profile's sample rate is
// forced to the pipeline's.
func WithSpectrum(cfg spectrum.Config) PipelineOption {
	return func(p *Pipeline) {
		cfg.SampleRate = p.cfg.SampleRate
		p.spectrumCfg = &cfg
	}
}

// NewPipeline creates a Pipeline that classifies frames with engine and
// smooths them with cfg.
func NewPipeline(engine classifier.Engine, cfg Config, opts ...PipelineOption) (*Pipeline, error) {
	if engine == nil {
		return nil, fmt.Errorf("vad: classifier engine must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, engine: engine}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result is the outcome of processing one clip.
type Result struct {
	// Clip is the output audio: the silence-gated buffer, or the original
	// audio unchanged when gating removed everything (see Gated).
	Clip audio.Clip

	// Segments are the confirmed-speech intervals in the output timeline.
	// Empty when Gated is false.
	Segments []Segment

	// Gated is false when no speech was confirmed anywhere in the clip and
	// the original audio was passed through unchanged. This fallback is
	// policy, not an error.
	Gated bool

	// FramesProcessed is the number of fixed-length frames classified.
	FramesProcessed int

	// OriginalDuration and ProcessedDuration are the input and output clip
	// lengths.
	OriginalDuration  time.Duration
	ProcessedDuration time.Duration

	// Spectrum is the loudness profile of the output audio; nil unless the
	// pipeline was built with [WithSpectrum].
	Spectrum []float64
}

// Process gates one clip. The clip must be mono at the pipeline's sample
// rate — the core performs no resampling or channel mixing. ctx is checked
// between frames so a long clip can be abandoned early.
func (p *Pipeline) Process(ctx context.Context, clip audio.Clip) (*Result, error) {
	if clip.SampleRate != p.cfg.SampleRate {
		return nil, fmt.Errorf("vad: clip sample rate %d does not match pipeline rate %d", clip.SampleRate, p.cfg.SampleRate)
	}

	session, err := p.engine.NewSession(classifier.Config{
		SampleRate:   p.cfg.SampleRate,
		FrameSamples: p.cfg.FrameSamples,
	})
	if err != nil {
		return nil, fmt.Errorf("vad: create classifier session: %w", err)
	}
	defer session.Close()

	smoother, err := NewSmoother(p.cfg)
	if err != nil {
		return nil, err
	}
	acc := NewAccumulator(p.cfg.SampleRate)

	framer := audio.Framer{FrameSamples: p.cfg.FrameSamples}
	frames := framer.Frames(clip.Samples)
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prob, err := session.Classify(frame)
		if err != nil {
			return nil, fmt.Errorf("vad: classify frame %d: %w", i, err)
		}
		if err := classifier.CheckProbability(prob); err != nil {
			return nil, fmt.Errorf("vad: frame %d: probability %v: %w", i, prob, err)
		}
		acc.Observe(smoother.Process(frame, prob))
	}

	samples, segments := acc.Finish()

	res := &Result{
		Segments:         segments,
		Gated:            len(samples) > 0,
		FramesProcessed:  len(frames),
		OriginalDuration: clip.Duration(),
	}

	if !res.Gated {
		// No speech confirmed anywhere: pass the original audio through
		// unchanged. The caller decides what zero segments mean.
		slog.Debug("vad: no speech detected, passing original audio through",
			"frames", len(frames),
		)
		samples = clip.Samples
	} else if p.padShortClips {
		samples = padShort(samples, p.cfg.SampleRate)
	}

	res.Clip = audio.Clip{Samples: samples, SampleRate: p.cfg.SampleRate}
	res.ProcessedDuration = res.Clip.Duration()

	if p.spectrumCfg != nil {
		profile, err := spectrum.Summarize(samples, *p.spectrumCfg)
		if err != nil {
			return nil, fmt.Errorf("vad: spectrum profile: %w", err)
		}
		res.Spectrum = profile
	}

	return res, nil
}

// padShort pads samples with trailing zeros to padTargetSeconds when shorter
// than padTriggerSeconds.
func padShort(samples []float32, sampleRate int) []float32 {
	if len(samples) >= int(padTriggerSeconds*float64(sampleRate)) {
		return samples
	}
	target := int(padTargetSeconds * float64(sampleRate))
	padded := make([]float32, target)
	copy(padded, samples)
	return padded
}
