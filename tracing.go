package jongo

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	attrCollection = attribute.Key("db.collection.name")
	attrOperation  = attribute.Key("db.operation.name")
	attrTemplate   = attribute.Key("jongo.template")
)

func (c *Collection) startSpan(ctx context.Context, op, tmpl string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "jongo."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attrCollection.String(c.Name()),
			attrOperation.String(op),
			attrTemplate.String(tmpl),
		),
	)
}

// endSpan records err on span and in the log, if any, and ends span.
func (c *Collection) endSpan(span trace.Span, op string, err error) {
	if err != nil {
		c.logger.Error("operation failed", "collection", c.Name(), "op", op, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
