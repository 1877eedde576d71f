package spectrum_test

import (
	"math"
	"testing"

	"github.com/MrWong99/voicegate/pkg/spectrum"
)

// sine returns n samples of a sine wave at freq Hz.
func sine(n int, freq float64, sampleRate int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}

func summarize(t *testing.T, samples []float32, cfg spectrum.Config) []float64 {
	t.Helper()
	profile, err := spectrum.Summarize(samples, cfg)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	return profile
}

func TestProfileLengthAndBounds(t *testing.T) {
	cfg := spectrum.DefaultConfig(16000)
	profile := summarize(t, sine(16000, 440, 16000), cfg)
	if len(profile) != cfg.NumBuckets {
		t.Fatalf("profile length = %d, want %d", len(profile), cfg.NumBuckets)
	}
	for i, v := range profile {
		if v < 0 || v > 1 {
			t.Errorf("bucket %d = %v, out of [0, 1]", i, v)
		}
	}
}

func TestSilentBufferIsAllZero(t *testing.T) {
	cfg := spectrum.DefaultConfig(16000)
	for i, v := range summarize(t, make([]float32, 8000), cfg) {
		if v != 0 {
			t.Errorf("bucket %d = %v for silent input, want 0", i, v)
		}
	}
}

func TestEmptyBufferIsAllZero(t *testing.T) {
	cfg := spectrum.DefaultConfig(16000)
	for i, v := range summarize(t, nil, cfg) {
		if v != 0 {
			t.Errorf("bucket %d = %v for empty input, want 0", i, v)
		}
	}
}

func TestPureToneConcentratesInItsBucket(t *testing.T) {
	cfg := spectrum.DefaultConfig(16000)
	// A 1 kHz tone: find the bucket containing 1000 Hz. Band edges follow
	// edge(i) = 80 + 3920·(i/16)².
	target := -1
	for i := 0; i < cfg.NumBuckets; i++ {
		lo := 80 + 3920*math.Pow(float64(i)/16, 2)
		hi := 80 + 3920*math.Pow(float64(i+1)/16, 2)
		if 1000 >= lo && 1000 < hi {
			target = i
			break
		}
	}
	if target < 0 {
		t.Fatal("no bucket covers 1000 Hz")
	}

	profile := summarize(t, sine(16000, 1000, 16000), cfg)
	for i, v := range profile {
		if i == target {
			continue
		}
		if v > profile[target] {
			t.Errorf("bucket %d (=%v) exceeds the tone's bucket %d (=%v)", i, v, target, profile[target])
		}
	}
	if profile[target] == 0 {
		t.Error("tone bucket is zero")
	}
}

func TestLowFrequencyBucketsNarrow(t *testing.T) {
	_ = spectrum.DefaultConfig(16000)
	// Quadratic spacing: the first band must be narrower than the last.
	first := 3920 * math.Pow(1.0/16, 2)
	last := 3920 * (1 - math.Pow(15.0/16, 2))
	if first >= last {
		t.Fatalf("band widths not increasing: first %v, last %v", first, last)
	}
}

func TestBufferShorterThanWindow(t *testing.T) {
	cfg := spectrum.DefaultConfig(16000)
	// 100 samples < 512-sample window: analyzed as one zero-padded window.
	profile := summarize(t, sine(100, 500, 16000), cfg)
	var any bool
	for _, v := range profile {
		if v > 0 {
			any = true
		}
		if v < 0 || v > 1 {
			t.Fatalf("bucket out of range: %v", v)
		}
	}
	if !any {
		t.Error("short non-silent buffer produced an all-zero profile")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*spectrum.Config)
	}{
		{"zero sample rate", func(c *spectrum.Config) { c.SampleRate = 0 }},
		{"zero buckets", func(c *spectrum.Config) { c.NumBuckets = 0 }},
		{"zero window", func(c *spectrum.Config) { c.WindowSize = 0 }},
		{"zero hop", func(c *spectrum.Config) { c.HopSize = 0 }},
		{"inverted freq range", func(c *spectrum.Config) { c.MinFreq, c.MaxFreq = 4000, 80 }},
		{"inverted dB range", func(c *spectrum.Config) { c.FloorDB, c.CeilDB = -8, -55 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := spectrum.DefaultConfig(16000)
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate accepted an invalid config")
			}
		})
	}
	if err := spectrum.DefaultConfig(16000).Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestCustomBucketCount(t *testing.T) {
	cfg := spectrum.DefaultConfig(16000)
	cfg.NumBuckets = 8
	if got := len(summarize(t, sine(8000, 300, 16000), cfg)); got != 8 {
		t.Fatalf("profile length = %d, want 8", got)
	}
}
