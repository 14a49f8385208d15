package tracer

// Config defines the configuration for OpenTelemetry tracing.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is reported as the deployment environment.
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV"`

	// EnableExport sends spans to an OTLP/HTTP collector. The endpoint is taken
	// from the standard OTEL_EXPORTER_OTLP_* environment variables. When false,
	// spans are created but never leave the process.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
