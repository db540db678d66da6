package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// StartDestinationSpan starts a span for calls to the destination index
func StartDestinationSpan(ctx context.Context, operation, storeID string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "destination."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("destination.operation", operation),
			attribute.String("destination.store_id", storeID),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Attribute helpers for common sync-engine fields

func LinkID(id string) attribute.KeyValue {
	return attribute.String("link_id", id)
}

func DocumentID(id string) attribute.KeyValue {
	return attribute.String("document_id", id)
}

func StoreID(id string) attribute.KeyValue {
	return attribute.String("store_id", id)
}

func SourceClass(class string) attribute.KeyValue {
	return attribute.String("source_class", class)
}

func Version(v int64) attribute.KeyValue {
	return attribute.Int64("version", v)
}
