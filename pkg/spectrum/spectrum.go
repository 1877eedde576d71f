// Package spectrum computes a fixed-size, perceptually-spaced loudness
// profile of a finished audio buffer, intended for waveform/spectrum display
// in clients.
//
// The profile is a pure function of the input buffer: a short-time Fourier
// transform is aggregated into a small number of frequency buckets whose
// widths grow quadratically with frequency (narrow at low frequency, wide at
// high frequency — a log-like spacing without a true logarithm), then
// normalized to [0, 1] with a display gain curve.
package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Defaults for the analysis and display parameters.
const (
	DefaultNumBuckets = 16
	DefaultWindowSize = 512
	DefaultHopSize    = 256
	DefaultMinFreq    = 80.0
	DefaultMaxFreq    = 4000.0
	DefaultFloorDB    = -55.0
	DefaultCeilDB     = -8.0
	DefaultGain       = 1.3
	DefaultExponent   = 0.7
)

// magnitudeFloor avoids -Inf decibels for zero-magnitude bins. Any value
// this far below peak is clamped to 0 by the dB normalization anyway.
const magnitudeFloor = 1e-10

// Config holds the analysis parameters for one profile computation.
type Config struct {
	// SampleRate of the input buffer in Hz.
	SampleRate int

	// NumBuckets is the length of the output profile.
	NumBuckets int

	// WindowSize and HopSize control the short-time analysis, in samples.
	WindowSize int
	HopSize    int

	// MinFreq and MaxFreq bound the analyzed frequency range in Hz.
	MinFreq float64
	MaxFreq float64

	// FloorDB and CeilDB are mapped linearly onto [0, 1]; dB values outside
	// the range are clamped. Both are relative to the buffer's own peak
	// magnitude, so FloorDB/CeilDB are negative.
	FloorDB float64
	CeilDB  float64

	// Gain and Exponent shape the display curve applied after
	// normalization: clamp((normalized × Gain)^Exponent, 0, 1).
	Gain     float64
	Exponent float64
}

// DefaultConfig returns the default profile parameters for the given sample
// rate: 16 buckets over 80–4000 Hz, 512-sample Hann window with 256-sample
// hop, −55..−8 dB normalization, gain 1.3 and curve exponent 0.7.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate: sampleRate,
		NumBuckets: DefaultNumBuckets,
		WindowSize: DefaultWindowSize,
		HopSize:    DefaultHopSize,
		MinFreq:    DefaultMinFreq,
		MaxFreq:    DefaultMaxFreq,
		FloorDB:    DefaultFloorDB,
		CeilDB:     DefaultCeilDB,
		Gain:       DefaultGain,
		Exponent:   DefaultExponent,
	}
}

// Validate checks that cfg contains a coherent set of values.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("spectrum: sample rate %d is invalid", c.SampleRate)
	}
	if c.NumBuckets <= 0 {
		return fmt.Errorf("spectrum: bucket count %d must be positive", c.NumBuckets)
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("spectrum: window size %d must be positive", c.WindowSize)
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("spectrum: hop size %d must be positive", c.HopSize)
	}
	if c.MinFreq < 0 || c.MaxFreq <= c.MinFreq {
		return fmt.Errorf("spectrum: frequency range [%.0f, %.0f] is invalid", c.MinFreq, c.MaxFreq)
	}
	if c.CeilDB <= c.FloorDB {
		return fmt.Errorf("spectrum: dB range [%.0f, %.0f] is invalid", c.FloorDB, c.CeilDB)
	}
	return nil
}

// bandEdge returns the lower frequency edge of bucket i. The fractional
// bucket index is squared before scaling, which narrows buckets at low
// frequency and widens them at high frequency.
func (c Config) bandEdge(i int) float64 {
	frac := float64(i) / float64(c.NumBuckets)
	return c.MinFreq + (c.MaxFreq-c.MinFreq)*frac*frac
}

// Summarize computes the loudness profile of samples. Every value of the
// returned profile is in [0, 1]; buckets whose band contains no spectrogram
// bin are 0, as is every bucket of an all-zero buffer.
func Summarize(samples []float32, cfg Config) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mags, peak := spectrogram(samples, cfg.WindowSize, cfg.HopSize)
	profile := make([]float64, cfg.NumBuckets)
	if peak == 0 {
		return profile, nil
	}

	// Frequency per FFT bin; bins run 0..WindowSize/2.
	binHz := float64(cfg.SampleRate) / float64(cfg.WindowSize)

	for i := 0; i < cfg.NumBuckets; i++ {
		lo, hi := cfg.bandEdge(i), cfg.bandEdge(i+1)

		// Average the dB values of all bins in [lo, hi) across all frames.
		var sum float64
		var n int
		for _, frame := range mags {
			for bin, mag := range frame {
				f := float64(bin) * binHz
				if f < lo || f >= hi {
					continue
				}
				sum += 20 * math.Log10(math.Max(mag, magnitudeFloor)/peak)
				n++
			}
		}
		if n == 0 {
			continue
		}

		normalized := clamp((sum/float64(n) - cfg.FloorDB) / (cfg.CeilDB - cfg.FloorDB))
		profile[i] = clamp(math.Pow(normalized*cfg.Gain, cfg.Exponent))
	}
	return profile, nil
}

// spectrogram computes the Hann-windowed short-time magnitude spectrogram of
// samples and the peak magnitude across all frames. Buffers shorter than one
// window are zero-padded to a single window; trailing samples beyond the
// last full window are dropped.
func spectrogram(samples []float32, windowSize, hopSize int) (mags [][]float64, peak float64) {
	numFrames := 1
	if len(samples) > windowSize {
		numFrames = 1 + (len(samples)-windowSize)/hopSize
	}

	fft := fourier.NewFFT(windowSize)
	seq := make([]float64, windowSize)
	coeffs := make([]complex128, windowSize/2+1)
	mags = make([][]float64, 0, numFrames)

	for f := 0; f < numFrames; f++ {
		off := f * hopSize
		for i := range seq {
			if off+i < len(samples) {
				seq[i] = float64(samples[off+i])
			} else {
				seq[i] = 0
			}
		}
		window.Hann(seq)
		fft.Coefficients(coeffs, seq)

		frame := make([]float64, len(coeffs))
		for i, c := range coeffs {
			m := math.Hypot(real(c), imag(c))
			frame[i] = m
			if m > peak {
				peak = m
			}
		}
		mags = append(mags, frame)
	}
	return mags, peak
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
