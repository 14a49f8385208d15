package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config defines the logger settings.
type Config struct {
	// Level is the minimum level that is written.
	// 1. debug -> DEBUG
	// 2. warning -> WARN
	// 3. error -> ERROR
	// else -> INFO
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// EnableTracing adds trace_id and span_id from the context to entries
	// written with the *WithContext methods.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`
}
