// Package tracer provides OpenTelemetry tracing for the decoding pipeline.
//
// The decoder opens one span per record and the Kafka consumer restores the
// producer's trace context from message headers before decoding, so a
// rejected record can be followed back to where it was produced.
//
//	t, err := tracer.NewClient(tracer.Config{ServiceName: "avroframe"}, log)
//	ctx = t.SetCarrierOnContext(ctx, headers)
//	ctx, span := t.StartSpan(ctx, "avroframe.decode")
//	defer span.End()
//
// Spans are exported over OTLP/HTTP only when Config.EnableExport is set.
package tracer
