// Package observe provides application-wide observability primitives for
// voicegate: OpenTelemetry metrics and the provider bootstrap that bridges
// them to Prometheus.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all voicegate metrics.
const meterName = "github.com/MrWong99/voicegate"

// Clip outcome values for the "status" attribute on ClipsProcessed.
const (
	StatusGated    = "gated"
	StatusFallback = "fallback"
	StatusError    = "error"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ProcessDuration tracks per-clip gating latency.
	ProcessDuration metric.Float64Histogram

	// ClipsProcessed counts processed clips. Use with attribute:
	//   attribute.String("status", StatusGated|StatusFallback|StatusError)
	ClipsProcessed metric.Int64Counter

	// FramesProcessed counts classified frames across all clips.
	FramesProcessed metric.Int64Counter

	// SegmentsEmitted counts confirmed speech segments across all clips.
	SegmentsEmitted metric.Int64Counter

	// ActiveClips tracks the number of clips currently being processed.
	ActiveClips metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// batch clip processing.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ProcessDuration, err = m.Float64Histogram("voicegate.process.duration",
		metric.WithDescription("Latency of gating one clip."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClipsProcessed, err = m.Int64Counter("voicegate.clips.processed",
		metric.WithDescription("Number of clips processed, by outcome status."),
	); err != nil {
		return nil, err
	}
	if met.FramesProcessed, err = m.Int64Counter("voicegate.frames.processed",
		metric.WithDescription("Number of audio frames classified."),
	); err != nil {
		return nil, err
	}
	if met.SegmentsEmitted, err = m.Int64Counter("voicegate.segments.emitted",
		metric.WithDescription("Number of confirmed speech segments."),
	); err != nil {
		return nil, err
	}
	if met.ActiveClips, err = m.Int64UpDownCounter("voicegate.clips.active",
		metric.WithDescription("Number of clips currently being processed."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordClip records the outcome of one clip in a single call.
func (m *Metrics) RecordClip(ctx context.Context, status string, duration time.Duration, frames, segments int) {
	m.ProcessDuration.Record(ctx, duration.Seconds())
	m.ClipsProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.FramesProcessed.Add(ctx, int64(frames))
	m.SegmentsEmitted.Add(ctx, int64(segments))
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the process-wide [Metrics] instance built from the
// global OTel meter provider. The first call wins; call it after
// [InitProvider] so the instruments bind to the real provider.
func DefaultMetrics() (*Metrics, error) {
	var err error
	defaultMetricsOnce.Do(func() {
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
	})
	return defaultMetrics, err
}
