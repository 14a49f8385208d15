package decoder

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/avroframe/v1/avro"
	"github.com/Aleph-Alpha/avroframe/v1/record"
	"github.com/Aleph-Alpha/avroframe/v1/wire"
)

const spanName = "avroframe.decode"

// Resolver maps a schema id to a parsed schema. *schema_registry.Cache
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, id uint32) (*avro.Schema, error)
}

// Logger defines the logging methods used by the decoder.
//
//go:generate mockgen -source=decoder.go -destination=mock_logger.go -package=decoder -exclude_interfaces=Resolver,Observer,Tracer
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Observer is notified once per Decode. stage is empty when err is nil.
type Observer interface {
	ObserveDecode(stage string, duration time.Duration, err error)
}

// Tracer opens the per-record span.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

// Decoder turns framed Avro buffers into records.
//
// Each call runs framing, schema resolution, binary decoding and assembly in
// order. Any failure rejects the record and nothing else: the Decoder keeps
// no per-record state and can be shared across goroutines.
type Decoder struct {
	cfg      Config
	resolver Resolver
	logger   Logger
	observer Observer
	tracer   Tracer
	opts     []record.Option
}

// NewDecoder creates a Decoder. cfg.SchemaIDWidth is clamped to 0..4.
func NewDecoder(cfg Config, resolver Resolver, logger Logger) *Decoder {
	cfg.SchemaIDWidth = wire.ClampWidth(cfg.SchemaIDWidth)

	d := &Decoder{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
	}
	if cfg.DeriveUnixTime {
		d.opts = append(d.opts, record.WithUnixTime())
	}
	return d
}

// WithObserver attaches an observer for decode outcomes.
func (d *Decoder) WithObserver(observer Observer) *Decoder {
	d.observer = observer
	return d
}

// WithTracer attaches a tracer; every Decode then runs inside its own span.
func (d *Decoder) WithTracer(tracer Tracer) *Decoder {
	d.tracer = tracer
	return d
}

// Config returns the effective configuration.
func (d *Decoder) Config() Config {
	return d.cfg
}

// Decode parses one framed buffer.
//
// On failure the returned error is a *RejectError naming the stage. buf is
// not retained; byte values in the record are copies.
func (d *Decoder) Decode(ctx context.Context, buf []byte) (record.Record, error) {
	start := time.Now()

	var span trace.Span
	if d.tracer != nil {
		ctx, span = d.tracer.StartSpan(ctx, spanName)
		defer span.End()
		d.tracer.SetAttributes(span, map[string]interface{}{"frame.size": len(buf)})
	}

	rec, err := d.decode(ctx, buf)

	var stage Stage
	if err != nil {
		var re *RejectError
		errors.As(err, &re)
		stage = re.Stage
		d.logReject(ctx, re)
		if span != nil {
			d.tracer.SetAttributes(span, map[string]interface{}{
				"stage":     string(re.Stage),
				"schema_id": re.SchemaID,
			})
			d.tracer.RecordErrorOnSpan(span, err)
		}
	} else if span != nil {
		d.tracer.SetAttributes(span, map[string]interface{}{"schema_id": rec.SchemaID()})
	}

	if d.observer != nil {
		d.observer.ObserveDecode(string(stage), time.Since(start), err)
	}
	return rec, err
}

func (d *Decoder) decode(ctx context.Context, buf []byte) (record.Record, error) {
	frame, err := wire.Parse(buf, d.cfg.SchemaIDWidth, d.cfg.MagicByte)
	if err != nil {
		return nil, &RejectError{Stage: StageFraming, Err: err}
	}
	id := frame.SchemaID

	schema, err := d.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, &RejectError{Stage: StageResolution, SchemaID: id, Err: err}
	}

	value, err := avro.Decode(schema, frame.Payload)
	if err != nil {
		return nil, &RejectError{Stage: StageDecoding, SchemaID: id, Err: err}
	}

	if shadowed := record.Shadowed(value); len(shadowed) > 0 {
		d.logger.WarnWithContext(ctx, "Decoded fields overwritten by metadata", nil, map[string]interface{}{
			"schema_id": id,
			"fields":    shadowed,
		})
	}

	rec, err := record.Assemble(value, id, d.cfg.RegistryURL, d.opts...)
	if err != nil {
		return nil, &RejectError{Stage: StageAssembly, SchemaID: id, Err: err}
	}
	return rec, nil
}

func (d *Decoder) logReject(ctx context.Context, re *RejectError) {
	fields := map[string]interface{}{"stage": string(re.Stage)}
	if re.Stage != StageFraming {
		fields["schema_id"] = re.SchemaID
	}

	// Foreign traffic on a shared topic is expected; keep it out of Warn.
	if wire.IsBadMagicError(re.Err) {
		d.logger.DebugWithContext(ctx, "Record rejected", re.Err, fields)
		return
	}
	d.logger.WarnWithContext(ctx, "Record rejected", re.Err, fields)
}
