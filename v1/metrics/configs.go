package metrics

// DefaultMetricsAddress is used when Config.Address is empty.
const DefaultMetricsAddress = ":9090"

// Config controls where metrics are served and how they are named.
type Config struct {
	// Address the /metrics endpoint listens on, e.g. ":9090" or "127.0.0.1:9100".
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors adds Go runtime, process and build info metrics.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every collector name: "avroframe" turns
	// records_total into avroframe_records_total. Empty means no prefix.
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName becomes the constant "service" label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}
