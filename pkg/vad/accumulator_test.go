package vad_test

import (
	"testing"

	"github.com/MrWong99/voicegate/pkg/vad"
)

func chunk(n int, value float32) []float32 {
	c := make([]float32, n)
	for i := range c {
		c[i] = value
	}
	return c
}

func TestAccumulatorEmptyStream(t *testing.T) {
	acc := vad.NewAccumulator(16000)
	samples, segments := acc.Finish()
	if len(samples) != 0 {
		t.Errorf("samples = %d, want 0", len(samples))
	}
	if len(segments) != 0 {
		t.Errorf("segments = %d, want 0", len(segments))
	}
}

func TestAccumulatorSingleSegment(t *testing.T) {
	acc := vad.NewAccumulator(1000) // 1 kHz keeps times round
	acc.Observe(vad.Decision{Kind: vad.DecisionStart, Audio: chunk(500, 1)})
	acc.Observe(vad.Decision{Kind: vad.DecisionContinue, Audio: chunk(250, 2)})
	acc.Observe(vad.Decision{Kind: vad.DecisionNone})

	samples, segments := acc.Finish()
	if len(samples) != 750 {
		t.Fatalf("samples = %d, want 750", len(samples))
	}
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	if segments[0].Start != 0 || segments[0].End != 0.75 {
		t.Errorf("segment = [%v, %v), want [0, 0.75)", segments[0].Start, segments[0].End)
	}
}

func TestAccumulatorSegmentTimesAreOutputTimeline(t *testing.T) {
	acc := vad.NewAccumulator(1000)
	// First segment: 300 samples of output.
	acc.Observe(vad.Decision{Kind: vad.DecisionStart, Audio: chunk(300, 1)})
	acc.Observe(vad.Decision{Kind: vad.DecisionNone})
	// Gap in the source stream contributes nothing to the output timeline.
	acc.Observe(vad.Decision{Kind: vad.DecisionNone})
	acc.Observe(vad.Decision{Kind: vad.DecisionNone})
	// Second segment: 200 samples.
	acc.Observe(vad.Decision{Kind: vad.DecisionStart, Audio: chunk(200, 2)})
	acc.Observe(vad.Decision{Kind: vad.DecisionNone})

	samples, segments := acc.Finish()
	if len(samples) != 500 {
		t.Fatalf("samples = %d, want 500", len(samples))
	}
	want := []vad.Segment{{Start: 0, End: 0.3}, {Start: 0.3, End: 0.5}}
	if len(segments) != len(want) {
		t.Fatalf("segments = %d, want %d", len(segments), len(want))
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segments[i], want[i])
		}
	}
	// Ordered, non-overlapping.
	if segments[0].End > segments[1].Start {
		t.Errorf("segments overlap: %+v then %+v", segments[0], segments[1])
	}
}

func TestAccumulatorFinishClosesOpenSegment(t *testing.T) {
	acc := vad.NewAccumulator(1000)
	acc.Observe(vad.Decision{Kind: vad.DecisionStart, Audio: chunk(100, 1)})
	acc.Observe(vad.Decision{Kind: vad.DecisionContinue, Audio: chunk(100, 2)})
	// Stream ends mid-hangover: the open segment must be closed at the
	// final output position, not dropped.
	samples, segments := acc.Finish()
	if len(samples) != 200 {
		t.Fatalf("samples = %d, want 200", len(samples))
	}
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1 (trailing segment dropped)", len(segments))
	}
	if segments[0].End != 0.2 {
		t.Errorf("segment end = %v, want 0.2", segments[0].End)
	}
}

func TestAccumulatorEverySampleInsideASegment(t *testing.T) {
	const rate = 1000
	acc := vad.NewAccumulator(rate)
	acc.Observe(vad.Decision{Kind: vad.DecisionStart, Audio: chunk(130, 1)})
	acc.Observe(vad.Decision{Kind: vad.DecisionNone})
	acc.Observe(vad.Decision{Kind: vad.DecisionStart, Audio: chunk(70, 2)})
	acc.Observe(vad.Decision{Kind: vad.DecisionContinue, Audio: chunk(40, 3)})

	samples, segments := acc.Finish()
	for i := range samples {
		tSec := float64(i) / rate
		covered := 0
		for _, seg := range segments {
			if tSec >= seg.Start && tSec < seg.End {
				covered++
			}
		}
		if covered != 1 {
			t.Fatalf("output sample %d (t=%v) covered by %d segments, want exactly 1", i, tSec, covered)
		}
	}
}
