// Package audio provides PCM sample conversion, downmixing, resampling, and
// fixed-size framing for the voicegate processing pipeline.
//
// The pipeline operates on mono float32 samples in [-1, 1]. This package
// converts little-endian int16 PCM (the common WAV/transport representation)
// into that domain and back, and slices a clip into the fixed-length frames
// the classifier consumes.
package audio

import "time"

// Clip is a finished mono audio buffer together with its sample rate.
type Clip struct {
	// Samples are mono float32 samples in [-1, 1].
	Samples []float32

	// SampleRate in Hz (e.g., 16000 for VAD input).
	SampleRate int
}

// Duration returns the clip length as a [time.Duration].
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// BytesToFloat32 converts little-endian int16 PCM bytes to float32 samples
// normalized to [-1, 1]. Divides by 32768 (not 32767) so that the full int16
// range maps strictly inside [-1, 1]. A trailing odd byte is ignored.
func BytesToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		u := uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8
		out[i] = float32(int16(u)) / 32768.0
	}
	return out
}

// Float32ToInt16 converts float32 samples in [-1, 1] to int16 samples,
// clamping values outside that range.
func Float32ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := s * 32767.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// Int16ToFloat32 converts int16 samples to float32 samples in [-1, 1].
func Int16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// DownmixStereo averages interleaved stereo samples (L, R, L, R, ...) into
// mono. A trailing unpaired sample is dropped.
func DownmixStereo(samples []float32) []float32 {
	frames := len(samples) / 2
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		out[i] = (samples[2*i] + samples[2*i+1]) / 2
	}
	return out
}

// Downmix reduces interleaved multi-channel samples to mono by averaging
// each channel group. channels must be >= 1; mono input is returned unchanged.
func Downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	if channels == 2 {
		return DownmixStereo(samples)
	}
	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// ResampleMono resamples mono float32 samples from srcRate to dstRate using
// linear interpolation. If srcRate == dstRate (or either rate is invalid) the
// input is returned unchanged.
func ResampleMono(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 {
		return samples
	}
	if srcRate == dstRate || len(samples) < 2 {
		return samples
	}
	dstLen := int(int64(len(samples)) * int64(dstRate) / int64(srcRate))
	if dstLen == 0 {
		return nil
	}

	out := make([]float32, dstLen)
	ratio := float64(srcRate) / float64(dstRate)

	for i := 0; i < dstLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := samples[srcIdx]
		s1 := s0
		if srcIdx+1 < len(samples) {
			s1 = samples[srcIdx+1]
		}
		out[i] = float32(float64(s0)*(1-frac) + float64(s1)*frac)
	}
	return out
}
