package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("fileshare/internal/service")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span. Expected outcomes (validation, forbidden, ...) are
// recorded as events only so they do not show up as failed spans.
func endSpan(span trace.Span, err error) {
	if err != nil {
		if KindOf(err) == KindInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("fileshare.error_kind", KindOf(err).String()))
		}
	}
	span.End()
}
