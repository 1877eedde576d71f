// Package wavefile reads and writes PCM WAV files for the voicegate CLI,
// bridging between the go-audio container types and the pipeline's mono
// float32 clips. Compressed formats are out of scope; inputs must be
// integer PCM.
package wavefile

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/MrWong99/voicegate/pkg/audio"
)

// Read decodes a PCM WAV file into a mono clip at the file's native sample
// rate. Multi-channel files are downmixed by averaging.
func Read(path string) (audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("wavefile: open %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Clip{}, fmt.Errorf("wavefile: decode %q: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return audio.Clip{}, fmt.Errorf("wavefile: %q has no valid format chunk", path)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return audio.Clip{}, fmt.Errorf("wavefile: %q has unsupported bit depth %d", path, bitDepth)
	}
	scale := float32(int64(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	samples = audio.Downmix(samples, buf.Format.NumChannels)

	return audio.Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// Write encodes a mono clip as a 16-bit PCM WAV file.
func Write(path string, clip audio.Clip) error {
	if clip.SampleRate <= 0 {
		return fmt.Errorf("wavefile: sample rate %d is invalid", clip.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavefile: create %q: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, clip.SampleRate, 16, 1, 1)

	ints := audio.Float32ToInt16(clip.Samples)
	data := make([]int, len(ints))
	for i, v := range ints {
		data[i] = int(v)
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavefile: write %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavefile: finalize %q: %w", path, err)
	}
	return f.Close()
}
