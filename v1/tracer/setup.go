package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// instrumentationName identifies spans created by this module.
const instrumentationName = "github.com/Aleph-Alpha/avroframe"

// Logger defines the logging methods used by the tracer.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Tracer wraps an OpenTelemetry TracerProvider with helpers for span
// creation, error recording and context propagation across Kafka headers.
//
// It is safe for concurrent use.
type Tracer struct {
	provider   *trace.TracerProvider
	propagator propagation.TextMapPropagator
	logger     Logger
}

// NewClient creates a Tracer and installs it as the global OpenTelemetry
// tracer provider and propagator.
//
// With cfg.EnableExport an OTLP/HTTP exporter is attached through a batcher.
//
// Example:
//
//	t, err := tracer.NewClient(tracer.Config{ServiceName: "avroframe", AppEnv: "prod"}, log)
//	if err != nil {
//	    return err
//	}
//	ctx, span := t.StartSpan(ctx, "decode")
//	defer span.End()
func NewClient(cfg Config, logger Logger) (*Tracer, error) {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient())
		if err != nil {
			return nil, fmt.Errorf("cannot initiate trace exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	t := newTracer(trace.NewTracerProvider(options...), logger)

	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(t.propagator)

	if logger != nil {
		logger.Info("Tracer initialized", nil, map[string]interface{}{
			"service_name": cfg.ServiceName,
			"export":       cfg.EnableExport,
		})
	}
	return t, nil
}

func newTracer(tp *trace.TracerProvider, logger Logger) *Tracer {
	return &Tracer{
		provider:   tp,
		propagator: propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
		logger:     logger,
	}
}

// Shutdown flushes pending spans and releases the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
