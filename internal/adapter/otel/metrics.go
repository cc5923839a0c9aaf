package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "training"

// Metrics holds the training metric instruments.
type Metrics struct {
	Mutations    metric.Int64Counter
	BulkAffected metric.Int64Counter
	Exports      metric.Int64Counter
	ExportRows   metric.Int64Histogram
	CacheHits    metric.Int64Counter
	CacheMisses  metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Mutations, err = meter.Int64Counter("training.mutations",
		metric.WithDescription("Number of record mutations"))
	if err != nil {
		return nil, err
	}

	m.BulkAffected, err = meter.Int64Counter("training.bulk.affected",
		metric.WithDescription("Rows changed by bulk actions"))
	if err != nil {
		return nil, err
	}

	m.Exports, err = meter.Int64Counter("training.exports",
		metric.WithDescription("Number of export downloads"))
	if err != nil {
		return nil, err
	}

	m.ExportRows, err = meter.Int64Histogram("training.export.rows",
		metric.WithDescription("Rows written per export"))
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter("training.dashboard.cache_hits",
		metric.WithDescription("Dashboard summaries served from cache"))
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter("training.dashboard.cache_misses",
		metric.WithDescription("Dashboard summaries recomputed"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Mutation counts one mutation of kind. Safe on a nil receiver.
func (m *Metrics) Mutation(ctx context.Context, kind, op string) {
	if m == nil {
		return
	}
	m.Mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind), attribute.String("op", op)))
}

// Bulk records the rows changed by one bulk action.
func (m *Metrics) Bulk(ctx context.Context, kind, action string, affected int64) {
	if m == nil {
		return
	}
	m.BulkAffected.Add(ctx, affected, metric.WithAttributes(
		attribute.String("kind", kind), attribute.String("action", action)))
}

// Export records one export download and its row count.
func (m *Metrics) Export(ctx context.Context, kind, format string, rows int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind), attribute.String("format", format))
	m.Exports.Add(ctx, 1, attrs)
	m.ExportRows.Record(ctx, int64(rows), attrs)
}

// Cache records a dashboard cache lookup.
func (m *Metrics) Cache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(ctx, 1)
		return
	}
	m.CacheMisses.Add(ctx, 1)
}
