package wavefile_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/MrWong99/voicegate/internal/wavefile"
	"github.com/MrWong99/voicegate/pkg/audio"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	in := audio.Clip{SampleRate: 16000, Samples: make([]float32, 1600)}
	for i := range in.Samples {
		in.Samples[i] = float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}

	if err := wavefile.Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := wavefile.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if out.SampleRate != in.SampleRate {
		t.Errorf("sample rate = %d, want %d", out.SampleRate, in.SampleRate)
	}
	if len(out.Samples) != len(in.Samples) {
		t.Fatalf("samples = %d, want %d", len(out.Samples), len(in.Samples))
	}
	for i := range in.Samples {
		// One 16-bit quantization step of tolerance.
		if math.Abs(float64(out.Samples[i]-in.Samples[i])) > 1.0/32768 {
			t.Fatalf("sample %d = %v, want ≈%v", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := wavefile.Read(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("Read succeeded on a missing file")
	}
}

func TestWriteRejectsInvalidRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := wavefile.Write(path, audio.Clip{SampleRate: 0}); err == nil {
		t.Fatal("Write accepted a zero sample rate")
	}
}
