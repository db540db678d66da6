package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics holds sync-engine metrics
type SyncMetrics struct {
	syncCounter     metric.Int64Counter
	uploadDuration  metric.Float64Histogram
	schedulerPasses metric.Int64Counter
}

// NewSyncMetrics creates sync metrics instruments
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := otel.Meter(instrumentationName)

	syncCounter, err := meter.Int64Counter(
		"docsync.sync_count",
		metric.WithDescription("Total number of per-link sync attempts"),
		metric.WithUnit("{syncs}"),
	)
	if err != nil {
		return nil, err
	}

	uploadDuration, err := meter.Float64Histogram(
		"docsync.upload.duration",
		metric.WithDescription("Destination upload duration in milliseconds, including the async indexing wait"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	schedulerPasses, err := meter.Int64Counter(
		"docsync.scheduler.pass_count",
		metric.WithDescription("Total number of completed auto-sync passes"),
		metric.WithUnit("{passes}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncCounter:     syncCounter,
		uploadDuration:  uploadDuration,
		schedulerPasses: schedulerPasses,
	}, nil
}

// RecordSync counts one sync attempt. Safe on a nil receiver so callers can
// run without telemetry wired.
func (m *SyncMetrics) RecordSync(ctx context.Context, sourceClass, outcome string) {
	if m == nil {
		return
	}
	m.syncCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source.class", sourceClass),
		attribute.String("sync.outcome", outcome),
	))
}

// RecordUploadDuration records one destination upload
func (m *SyncMetrics) RecordUploadDuration(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.uploadDuration.Record(ctx, float64(d.Milliseconds()))
}

// RecordSchedulerPass counts one completed scheduler pass
func (m *SyncMetrics) RecordSchedulerPass(ctx context.Context, sourceClass string, linkCount int) {
	if m == nil {
		return
	}
	m.schedulerPasses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source.class", sourceClass),
		attribute.Int("pass.link_count", linkCount),
	))
}
