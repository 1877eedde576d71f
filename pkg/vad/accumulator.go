package vad

// Accumulator turns the decision stream from a [Smoother] into one
// contiguous output buffer (silence removed) and a segment list expressed in
// output-timeline coordinates.
//
// A segment opens on the first emitting decision after silence and closes on
// the first non-emitting decision (or at [Accumulator.Finish]). Because the
// stream is processed strictly in order and a segment always closes before
// the next opens, the resulting segments are ordered by start and
// non-overlapping, and every output sample falls inside exactly one segment.
//
// Like the Smoother, an Accumulator belongs to one clip and must not be
// shared across goroutines.
type Accumulator struct {
	sampleRate int

	samples   []float32
	segments  []Segment
	openStart float64
	open      bool
}

// NewAccumulator creates an Accumulator producing segment times based on
// sampleRate.
func NewAccumulator(sampleRate int) *Accumulator {
	return &Accumulator{sampleRate: sampleRate}
}

// Observe feeds one decision into the accumulator.
func (a *Accumulator) Observe(d Decision) {
	if d.Emits() {
		if !a.open {
			a.openStart = a.cursor()
			a.open = true
		}
		a.samples = append(a.samples, d.Audio...)
		return
	}
	if a.open {
		a.closeSegment()
	}
}

// Finish closes any still-open segment at the current output position and
// returns the accumulated samples and segments. A clip that ends mid-hangover
// would otherwise silently lose its trailing speech, so callers must always
// call Finish at end of stream.
//
// The returned slices are owned by the caller; the Accumulator must not be
// reused afterwards.
func (a *Accumulator) Finish() ([]float32, []Segment) {
	if a.open {
		a.closeSegment()
	}
	return a.samples, a.segments
}

// cursor is the current output-timeline position in seconds.
func (a *Accumulator) cursor() float64 {
	return float64(len(a.samples)) / float64(a.sampleRate)
}

func (a *Accumulator) closeSegment() {
	a.segments = append(a.segments, Segment{Start: a.openStart, End: a.cursor()})
	a.open = false
}
