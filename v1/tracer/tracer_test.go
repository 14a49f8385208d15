package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorded() (*Tracer, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	return newTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)), nil), rec
}

func TestStartSpan_RecordsError(t *testing.T) {
	tr, rec := newRecorded()

	_, span := tr.StartSpan(context.Background(), "decode")
	tr.SetAttributes(span, map[string]interface{}{
		"schema_id": uint32(7),
		"stage":     "decoding",
		"bytes":     12,
		"shadowed":  true,
		"ratio":     0.5,
		"other":     []string{"a"},
	})
	tr.RecordErrorOnSpan(span, errors.New("truncated"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "decode", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "truncated", ended[0].Status().Description)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, int64(7), attrs["schema_id"].AsInt64())
	assert.Equal(t, "decoding", attrs["stage"].AsString())
	assert.True(t, attrs["shadowed"].AsBool())
	assert.Equal(t, "[a]", attrs["other"].AsString())
}

func TestCarrierRoundTrip(t *testing.T) {
	tr, rec := newRecorded()

	ctx, parent := tr.StartSpan(context.Background(), "produce")
	// Headers as an upstream producer would write them.
	carrier := propagation.MapCarrier{}
	tr.propagator.Inject(ctx, carrier)
	parent.End()
	require.Contains(t, carrier, "traceparent")

	ctx = tr.SetCarrierOnContext(context.Background(), carrier)
	_, child := tr.StartSpan(ctx, "consume")
	child.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[0].SpanContext().TraceID(), ended[1].SpanContext().TraceID())
	assert.Equal(t, ended[0].SpanContext().SpanID(), ended[1].Parent().SpanID())
}

func TestNewClient_NoExport(t *testing.T) {
	tr, err := NewClient(Config{ServiceName: "test", AppEnv: "test"}, nil)
	require.NoError(t, err)

	_, span := tr.StartSpan(context.Background(), "x")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, tr.Shutdown(context.Background()))
}

func TestShutdown_Nil(t *testing.T) {
	var tr *Tracer
	assert.NoError(t, tr.Shutdown(context.Background()))
}
