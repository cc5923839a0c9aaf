package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

const tracerName = "training"

// StartStoreSpan starts a span for one store operation on a record kind.
func StartStoreSpan(ctx context.Context, kind, op string, tid tenant.ID) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("training.kind", kind),
			attribute.String("tenant.id", tid.String()),
		),
	)
}

// StartExportSpan starts a span for rendering an export file.
func StartExportSpan(ctx context.Context, kind, format string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "export",
		trace.WithAttributes(
			attribute.String("training.kind", kind),
			attribute.String("export.format", format),
		),
	)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
