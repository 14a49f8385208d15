package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	traceSpan "go.opentelemetry.io/otel/trace"
)

// StartSpan starts a span named name as a child of any span in ctx.
// The returned span must be ended by the caller.
func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, traceSpan.Span) {
	return t.provider.Tracer(instrumentationName).Start(ctx, name)
}

// RecordErrorOnSpan records err on span and marks the span as failed.
//
// Example:
//
//	rec, err := dec.Decode(ctx, buf)
//	if err != nil {
//	    tracer.RecordErrorOnSpan(span, err)
//	}
func (t *Tracer) RecordErrorOnSpan(span traceSpan.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes adds attrs to span. Strings, ints, uint32s, int64s, float64s
// and bools keep their type; anything else is stored via fmt.Sprint.
func (t *Tracer) SetAttributes(span traceSpan.Span, attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case uint32:
			attributes = append(attributes, attribute.Int64(k, int64(val)))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}
	span.SetAttributes(attributes...)
}

// SetCarrierOnContext returns ctx carrying the trace context found in
// carrier. The Kafka consumer uses it so decode spans join the producer's
// trace.
func (t *Tracer) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	return t.propagator.Extract(ctx, propagation.MapCarrier(carrier))
}
