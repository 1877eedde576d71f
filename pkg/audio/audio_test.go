package audio_test

import (
	"math"
	"testing"
	"time"

	"github.com/MrWong99/voicegate/pkg/audio"
)

func TestBytesToFloat32(t *testing.T) {
	// -32768, 0, 32767 little-endian.
	pcm := []byte{0x00, 0x80, 0x00, 0x00, 0xFF, 0x7F}
	got := audio.BytesToFloat32(pcm)
	want := []float32{-1.0, 0, 32767.0 / 32768.0}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBytesToFloat32IgnoresTrailingOddByte(t *testing.T) {
	if got := audio.BytesToFloat32([]byte{0x01, 0x02, 0x03}); len(got) != 1 {
		t.Fatalf("length = %d, want 1", len(got))
	}
}

func TestFloat32ToInt16Clamps(t *testing.T) {
	got := audio.Float32ToInt16([]float32{0, 1.5, -1.5, 0.5})
	if got[1] != 32767 {
		t.Errorf("over-range sample = %d, want 32767", got[1])
	}
	if got[2] != -32768 {
		t.Errorf("under-range sample = %d, want -32768", got[2])
	}
	if got[3] != 16383 {
		t.Errorf("half-scale sample = %d, want 16383", got[3])
	}
}

func TestInt16RoundTrip(t *testing.T) {
	in := []int16{-32768, -1, 0, 1, 12345, 32767}
	got := audio.Float32ToInt16(audio.Int16ToFloat32(in))
	for i := range in {
		// Asymmetric scale (÷32768 then ×32767) loses at most one step.
		if diff := int(in[i]) - int(got[i]); diff < -1 || diff > 1 {
			t.Errorf("sample %d: %d → %d", i, in[i], got[i])
		}
	}
}

func TestDownmixStereo(t *testing.T) {
	got := audio.DownmixStereo([]float32{0.2, 0.4, -0.5, 0.5})
	want := []float32{0.3, 0}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDownmixMonoPassthrough(t *testing.T) {
	in := []float32{0.1, 0.2}
	if got := audio.Downmix(in, 1); &got[0] != &in[0] {
		t.Error("mono downmix must return the input unchanged")
	}
}

func TestResampleMonoHalvesRate(t *testing.T) {
	in := make([]float32, 100)
	for i := range in {
		in[i] = float32(i)
	}
	got := audio.ResampleMono(in, 32000, 16000)
	if len(got) != 50 {
		t.Fatalf("length = %d, want 50", len(got))
	}
	// Linear interpolation over a linear ramp reproduces the ramp.
	for i, v := range got {
		if want := float32(2 * i); v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestResampleMonoSameRatePassthrough(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	if got := audio.ResampleMono(in, 16000, 16000); &got[0] != &in[0] {
		t.Error("same-rate resample must return the input unchanged")
	}
}

func TestClipDuration(t *testing.T) {
	c := audio.Clip{Samples: make([]float32, 24000), SampleRate: 16000}
	if got := c.Duration(); got != 1500*time.Millisecond {
		t.Errorf("duration = %v, want 1.5s", got)
	}
}

func TestFramerPadsFinalFrame(t *testing.T) {
	f := audio.Framer{FrameSamples: 4}
	frames := f.Frames([]float32{1, 2, 3, 4, 5, 6})
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	for _, frame := range frames {
		if len(frame) != 4 {
			t.Fatalf("frame length = %d, want 4", len(frame))
		}
	}
	want := []float32{5, 6, 0, 0}
	for i, v := range frames[1] {
		if v != want[i] {
			t.Errorf("padded frame sample %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestFramerExactMultiple(t *testing.T) {
	f := audio.Framer{FrameSamples: 3}
	frames := f.Frames([]float32{1, 2, 3, 4, 5, 6})
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[1][2] != 6 {
		t.Errorf("last sample = %v, want 6", frames[1][2])
	}
}

func TestFramerEmptyInput(t *testing.T) {
	f := audio.Framer{FrameSamples: 4}
	if frames := f.Frames(nil); frames != nil {
		t.Fatalf("frames = %d, want none", len(frames))
	}
}

func TestFrameCount(t *testing.T) {
	f := audio.Framer{FrameSamples: 480}
	tests := []struct{ samples, want int }{
		{0, 0},
		{1, 1},
		{480, 1},
		{481, 2},
		{960, 2},
	}
	for _, tt := range tests {
		if got := f.FrameCount(tt.samples); got != tt.want {
			t.Errorf("FrameCount(%d) = %d, want %d", tt.samples, got, tt.want)
		}
	}
}
