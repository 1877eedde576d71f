// Package config provides the configuration schema, loader, and validation
// for the voicegate gating tool.
package config

import (
	"github.com/MrWong99/voicegate/pkg/classifier/energy"
	"github.com/MrWong99/voicegate/pkg/spectrum"
	"github.com/MrWong99/voicegate/pkg/vad"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for voicegate.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Audio      AudioConfig      `yaml:"audio"`
	VAD        VADConfig        `yaml:"vad"`
	Spectrum   SpectrumConfig   `yaml:"spectrum"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level controls verbosity. Default: info.
	Level LogLevel `yaml:"level"`
}

// MetricsConfig configures the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	// ListenAddr is the TCP address for the /metrics endpoint
	// (e.g., ":9090"). Empty disables the endpoint.
	ListenAddr string `yaml:"listen_addr"`
}

// AudioConfig holds the processing audio format.
type AudioConfig struct {
	// SampleRate the pipeline operates at; inputs are resampled to it.
	SampleRate int `yaml:"sample_rate"`

	// FrameMillis is the classification frame duration in milliseconds.
	FrameMillis int `yaml:"frame_ms"`

	// PadShortClips pads gated output shorter than 1 s to 1.25 s.
	PadShortClips bool `yaml:"pad_short_clips"`
}

// VADConfig holds the smoothing state machine parameters.
type VADConfig struct {
	// Enabled toggles gating entirely; when false, input passes through.
	Enabled bool `yaml:"enabled"`

	// Threshold is the voiced probability cutoff (strict greater-than).
	Threshold float64 `yaml:"threshold"`

	// OnsetFrames is the consecutive voiced frames confirming speech start.
	OnsetFrames int `yaml:"onset_frames"`

	// HangoverFrames is the unvoiced frames tolerated before speech end.
	HangoverFrames int `yaml:"hangover_frames"`

	// PrefillFrames is the lead-in frames replayed at confirmed onset.
	PrefillFrames int `yaml:"prefill_frames"`
}

// SpectrumConfig holds the loudness profile parameters.
type SpectrumConfig struct {
	// Enabled toggles profile computation.
	Enabled bool `yaml:"enabled"`

	// Buckets is the profile length.
	Buckets int `yaml:"buckets"`

	// WindowSize and HopSize control the short-time analysis, in samples.
	WindowSize int `yaml:"window_size"`
	HopSize    int `yaml:"hop_size"`

	// MinFreq and MaxFreq bound the analyzed range in Hz.
	MinFreq float64 `yaml:"min_freq"`
	MaxFreq float64 `yaml:"max_freq"`

	// FloorDB and CeilDB define the dB normalization range.
	FloorDB float64 `yaml:"floor_db"`
	CeilDB  float64 `yaml:"ceil_db"`

	// Gain and Exponent shape the display curve.
	Gain     float64 `yaml:"gain"`
	Exponent float64 `yaml:"exponent"`
}

// ClassifierConfig selects and configures the speech probability detector.
type ClassifierConfig struct {
	// Name selects the engine: "energy" or "silero".
	Name string `yaml:"name"`

	// ModelPath is the ONNX model file (silero only).
	ModelPath string `yaml:"model_path"`

	// LibraryPath is the ONNX Runtime shared library (silero only;
	// optional — falls back to the environment).
	LibraryPath string `yaml:"library_path"`

	// NoiseFloorRMS and FullScaleRMS override the energy engine's
	// probability mapping anchors when non-zero.
	NoiseFloorRMS float64 `yaml:"noise_floor_rms"`
	FullScaleRMS  float64 `yaml:"full_scale_rms"`
}

// Default returns a Config populated with the default values: 16 kHz, 30 ms
// frames, the stock smoothing tuning, spectrum enabled with 16 buckets, and
// the energy classifier.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: LogInfo},
		Audio: AudioConfig{
			SampleRate:  vad.DefaultSampleRate,
			FrameMillis: vad.DefaultFrameMillis,
		},
		VAD: VADConfig{
			Enabled:        true,
			Threshold:      vad.DefaultThreshold,
			OnsetFrames:    vad.DefaultOnsetFrames,
			HangoverFrames: vad.DefaultHangoverFrames,
			PrefillFrames:  vad.DefaultPrefillFrames,
		},
		Spectrum: SpectrumConfig{
			Enabled:    true,
			Buckets:    spectrum.DefaultNumBuckets,
			WindowSize: spectrum.DefaultWindowSize,
			HopSize:    spectrum.DefaultHopSize,
			MinFreq:    spectrum.DefaultMinFreq,
			MaxFreq:    spectrum.DefaultMaxFreq,
			FloorDB:    spectrum.DefaultFloorDB,
			CeilDB:     spectrum.DefaultCeilDB,
			Gain:       spectrum.DefaultGain,
			Exponent:   spectrum.DefaultExponent,
		},
		Classifier: ClassifierConfig{
			Name:          "energy",
			NoiseFloorRMS: energy.DefaultNoiseFloorRMS,
			FullScaleRMS:  energy.DefaultFullScaleRMS,
		},
	}
}

// VADSettings converts the configured audio and smoothing values into a
// [vad.Config] for the pipeline.
func (c *Config) VADSettings() vad.Config {
	return vad.Config{
		SampleRate:     c.Audio.SampleRate,
		FrameSamples:   c.Audio.SampleRate * c.Audio.FrameMillis / 1000,
		Threshold:      c.VAD.Threshold,
		OnsetFrames:    c.VAD.OnsetFrames,
		HangoverFrames: c.VAD.HangoverFrames,
		PrefillFrames:  c.VAD.PrefillFrames,
	}
}

// SpectrumSettings converts the configured profile values into a
// [spectrum.Config].
func (c *Config) SpectrumSettings() spectrum.Config {
	return spectrum.Config{
		SampleRate: c.Audio.SampleRate,
		NumBuckets: c.Spectrum.Buckets,
		WindowSize: c.Spectrum.WindowSize,
		HopSize:    c.Spectrum.HopSize,
		MinFreq:    c.Spectrum.MinFreq,
		MaxFreq:    c.Spectrum.MaxFreq,
		FloorDB:    c.Spectrum.FloorDB,
		CeilDB:     c.Spectrum.CeilDB,
		Gain:       c.Spectrum.Gain,
		Exponent:   c.Spectrum.Exponent,
	}
}
