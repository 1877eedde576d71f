package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordClip(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordClip(ctx, StatusGated, 250*time.Millisecond, 87, 1)
	m.RecordClip(ctx, StatusFallback, 100*time.Millisecond, 40, 0)

	rm := collect(t, reader)

	frames := findMetric(rm, "voicegate.frames.processed")
	if frames == nil {
		t.Fatal("voicegate.frames.processed not found")
	}
	sum, ok := frames.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("frames.processed data type = %T", frames.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 127 {
		t.Errorf("frames total = %d, want 127", total)
	}

	clips := findMetric(rm, "voicegate.clips.processed")
	if clips == nil {
		t.Fatal("voicegate.clips.processed not found")
	}
	clipSum := clips.Data.(metricdata.Sum[int64])
	// One data point per distinct status attribute.
	if len(clipSum.DataPoints) != 2 {
		t.Errorf("clips.processed data points = %d, want 2", len(clipSum.DataPoints))
	}

	hist := findMetric(rm, "voicegate.process.duration")
	if hist == nil {
		t.Fatal("voicegate.process.duration not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("process.duration data type = %T", hist.Data)
	}
	var count uint64
	for _, dp := range h.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("histogram count = %d, want 2", count)
	}
}

func TestActiveClipsUpDown(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveClips.Add(ctx, 1)
	m.ActiveClips.Add(ctx, 1)
	m.ActiveClips.Add(ctx, -1)

	rm := collect(t, reader)
	active := findMetric(rm, "voicegate.clips.active")
	if active == nil {
		t.Fatal("voicegate.clips.active not found")
	}
	sum := active.Data.(metricdata.Sum[int64])
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 1 {
		t.Errorf("active clips = %d, want 1", total)
	}
}
