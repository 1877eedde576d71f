package vad

// DecisionKind distinguishes the three possible per-frame outcomes of the
// smoothing state machine.
type DecisionKind int

const (
	// DecisionNone: the frame is not part of confirmed speech; nothing is
	// emitted.
	DecisionNone DecisionKind = iota

	// DecisionStart: speech has just been confirmed; the payload is the
	// entire pre-roll buffer (including the current frame) concatenated in
	// arrival order.
	DecisionStart

	// DecisionContinue: speech is ongoing (or within the hangover window);
	// the payload is the current frame alone.
	DecisionContinue
)

// Decision is the tagged per-frame result of [Smoother.Process]. Audio is
// always non-nil for DecisionStart and DecisionContinue and always nil for
// DecisionNone, so an "emit without payload" state cannot be represented.
type Decision struct {
	Kind  DecisionKind
	Audio []float32
}

// Emits reports whether the decision carries audio for the output stream.
func (d Decision) Emits() bool { return d.Kind != DecisionNone }

// Smoother is the voice-activity smoothing state machine. It debounces the
// thresholded probability signal in both directions: OnsetFrames consecutive
// voiced frames are required before speech starts, and HangoverFrames
// unvoiced frames are tolerated before it ends. A ring buffer of the most
// recent PrefillFrames+1 frames supplies the lead-in audio that would
// otherwise be lost during onset confirmation.
//
// A Smoother processes exactly one clip at a time and must not be shared
// across goroutines. Create one per clip, or call [Smoother.Reset] between
// clips.
type Smoother struct {
	cfg Config

	ring            *frameRing
	onsetCounter    int
	hangoverCounter int
	inSpeech        bool
}

// NewSmoother creates a Smoother for the given configuration.
func NewSmoother(cfg Config) (*Smoother, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Smoother{
		cfg:  cfg,
		ring: newFrameRing(cfg.PrefillFrames + 1),
	}, nil
}

// Process advances the state machine by one frame and returns the decision
// for it. probability is the classifier output for frame; the frame counts
// as voiced only when probability is strictly greater than the configured
// threshold.
//
// The frame is copied into the internal pre-roll buffer, so the caller may
// reuse the slice after Process returns.
func (s *Smoother) Process(frame []float32, probability float64) Decision {
	s.ring.push(frame)

	voiced := probability > s.cfg.Threshold

	switch {
	case !s.inSpeech && voiced:
		// Possible speech start.
		s.onsetCounter++
		if s.onsetCounter >= s.cfg.OnsetFrames {
			// Confirmed: flush the pre-roll, including the current frame.
			s.inSpeech = true
			s.hangoverCounter = s.cfg.HangoverFrames
			s.onsetCounter = 0
			return Decision{Kind: DecisionStart, Audio: s.ring.concat()}
		}
		return Decision{Kind: DecisionNone}

	case s.inSpeech && voiced:
		// Ongoing speech: full hangover refresh, not a decrement.
		s.hangoverCounter = s.cfg.HangoverFrames
		return Decision{Kind: DecisionContinue, Audio: copyFrame(frame)}

	case s.inSpeech && !voiced:
		// Possible speech end. Frames within the tolerance window are still
		// emitted even though they tested unvoiced; this preserves trailing
		// syllables and breath.
		if s.hangoverCounter > 0 {
			s.hangoverCounter--
			return Decision{Kind: DecisionContinue, Audio: copyFrame(frame)}
		}
		s.inSpeech = false
		return Decision{Kind: DecisionNone}

	default: // !s.inSpeech && !voiced
		// Any break in the voiced run forfeits onset progress.
		s.onsetCounter = 0
		return Decision{Kind: DecisionNone}
	}
}

// InSpeech reports whether the smoother is currently inside a confirmed
// speech region.
func (s *Smoother) InSpeech() bool { return s.inSpeech }

// Reset clears the ring buffer and all counters so the Smoother can process
// a new clip. A fresh Smoother and a Reset one produce identical output for
// the same frame sequence.
func (s *Smoother) Reset() {
	s.ring.clear()
	s.onsetCounter = 0
	s.hangoverCounter = 0
	s.inSpeech = false
}

func copyFrame(frame []float32) []float32 {
	cp := make([]float32, len(frame))
	copy(cp, frame)
	return cp
}

// frameRing is a fixed-capacity circular buffer of frames. Pushing onto a
// full ring evicts the oldest frame, so memory stays bounded at capacity
// frames regardless of clip length.
type frameRing struct {
	frames [][]float32
	head   int // index of the oldest frame
	count  int
}

func newFrameRing(capacity int) *frameRing {
	return &frameRing{frames: make([][]float32, capacity)}
}

// push appends a copy of frame, evicting the oldest entry when full.
func (r *frameRing) push(frame []float32) {
	tail := (r.head + r.count) % len(r.frames)
	r.frames[tail] = copyFrame(frame)
	if r.count < len(r.frames) {
		r.count++
		return
	}
	r.head = (r.head + 1) % len(r.frames)
}

// concat returns all buffered frames joined in arrival order.
func (r *frameRing) concat() []float32 {
	var total int
	for i := 0; i < r.count; i++ {
		total += len(r.frames[(r.head+i)%len(r.frames)])
	}
	out := make([]float32, 0, total)
	for i := 0; i < r.count; i++ {
		out = append(out, r.frames[(r.head+i)%len(r.frames)]...)
	}
	return out
}

// clear drops all buffered frames.
func (r *frameRing) clear() {
	for i := range r.frames {
		r.frames[i] = nil
	}
	r.head = 0
	r.count = 0
}
