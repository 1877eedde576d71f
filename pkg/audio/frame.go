package audio

// Framer slices a mono sample buffer into consecutive fixed-length frames.
// The final short frame, if any, is zero-padded to the full frame length so
// every returned frame has exactly FrameSamples samples.
//
// Full frames alias the source buffer (zero copy); consumers that retain a
// frame must copy it. Only the padded final frame is a fresh allocation.
type Framer struct {
	// FrameSamples is the fixed frame length in samples. Must be > 0.
	FrameSamples int
}

// Frames returns the fixed-length frames of samples in order. An empty input
// (or an invalid frame length) returns nil.
func (f Framer) Frames(samples []float32) [][]float32 {
	if f.FrameSamples <= 0 || len(samples) == 0 {
		return nil
	}
	frames := make([][]float32, 0, f.FrameCount(len(samples)))
	for off := 0; off < len(samples); off += f.FrameSamples {
		end := off + f.FrameSamples
		if end <= len(samples) {
			frames = append(frames, samples[off:end:end])
			continue
		}
		// Final short frame: pad with zeros.
		frame := make([]float32, f.FrameSamples)
		copy(frame, samples[off:])
		frames = append(frames, frame)
	}
	return frames
}

// FrameCount returns the number of frames Frames will return for a buffer of
// the given sample count.
func (f Framer) FrameCount(sampleCount int) int {
	if f.FrameSamples <= 0 || sampleCount <= 0 {
		return 0
	}
	return (sampleCount + f.FrameSamples - 1) / f.FrameSamples
}
