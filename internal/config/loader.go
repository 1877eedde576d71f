package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidClassifierNames lists the classifier engines that ship with voicegate.
// Used by [Validate] to warn about unrecognised names.
var ValidClassifierNames = []string{"energy", "silero"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Keys absent from the document keep their default
// values. Useful in tests where configs are constructed from string
// literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Logging.Level != "" && !cfg.Logging.Level.IsValid() {
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", cfg.Logging.Level))
	}

	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", cfg.Audio.SampleRate))
	}
	if cfg.Audio.FrameMillis <= 0 {
		errs = append(errs, fmt.Errorf("audio.frame_ms %d must be positive", cfg.Audio.FrameMillis))
	} else if cfg.Audio.SampleRate > 0 && cfg.Audio.SampleRate*cfg.Audio.FrameMillis%1000 != 0 {
		errs = append(errs, fmt.Errorf("audio.frame_ms %d does not yield a whole number of samples at %d Hz", cfg.Audio.FrameMillis, cfg.Audio.SampleRate))
	}

	if cfg.VAD.Threshold < 0 || cfg.VAD.Threshold > 1 {
		errs = append(errs, fmt.Errorf("vad.threshold %.3f is out of range [0, 1]", cfg.VAD.Threshold))
	}
	if cfg.VAD.OnsetFrames < 1 {
		errs = append(errs, fmt.Errorf("vad.onset_frames %d must be at least 1", cfg.VAD.OnsetFrames))
	}
	if cfg.VAD.HangoverFrames < 0 {
		errs = append(errs, fmt.Errorf("vad.hangover_frames %d must not be negative", cfg.VAD.HangoverFrames))
	}
	if cfg.VAD.PrefillFrames < 0 {
		errs = append(errs, fmt.Errorf("vad.prefill_frames %d must not be negative", cfg.VAD.PrefillFrames))
	}

	if cfg.Spectrum.Enabled {
		if err := cfg.SpectrumSettings().Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if name := cfg.Classifier.Name; name != "" && !slices.Contains(ValidClassifierNames, name) {
		slog.Warn("unknown classifier name — may be a typo",
			"name", name,
			"known", ValidClassifierNames,
		)
	}
	if cfg.Classifier.Name == "silero" && cfg.Classifier.ModelPath == "" {
		errs = append(errs, errors.New("classifier.model_path is required when classifier.name is silero"))
	}

	return errors.Join(errs...)
}
