package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// Default values for consumer configuration
const (
	// DefaultMinBytes is the minimum number of bytes to fetch per request.
	DefaultMinBytes = 1

	// DefaultMaxBytes is the maximum number of bytes to fetch per request (10MB).
	DefaultMaxBytes = 10e6

	// DefaultMaxWait is how long to wait for MinBytes before returning a fetch.
	DefaultMaxWait = 500 * time.Millisecond

	// DefaultCommitInterval flushes committed offsets to the broker periodically.
	// Zero would commit synchronously after every message.
	DefaultCommitInterval = time.Second

	// DefaultStartOffset is where a new consumer group starts reading.
	DefaultStartOffset = kafka.FirstOffset

	// DefaultWorkers decodes one message at a time.
	DefaultWorkers = 1
)

// Config defines the configuration for the Kafka source.
type Config struct {
	// Brokers is a list of Kafka broker addresses.
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`

	// Topic carries the framed Avro records.
	Topic string `yaml:"topic" envconfig:"KAFKA_TOPIC"`

	// GroupID is the consumer group. Offsets are committed to it.
	GroupID string `yaml:"group_id" envconfig:"KAFKA_GROUP_ID"`

	// MinBytes is the minimum number of bytes to fetch.
	MinBytes int `yaml:"min_bytes" envconfig:"KAFKA_MIN_BYTES"`

	// MaxBytes is the maximum number of bytes to fetch.
	MaxBytes int `yaml:"max_bytes" envconfig:"KAFKA_MAX_BYTES"`

	// MaxWait is the maximum time to wait for a fetch to fill MinBytes.
	MaxWait time.Duration `yaml:"max_wait" envconfig:"KAFKA_MAX_WAIT"`

	// StartOffset is kafka.FirstOffset (-2) or kafka.LastOffset (-1).
	StartOffset int64 `yaml:"start_offset" envconfig:"KAFKA_START_OFFSET"`

	// CommitInterval is how often committed offsets are flushed.
	CommitInterval time.Duration `yaml:"commit_interval" envconfig:"KAFKA_COMMIT_INTERVAL"`

	// Workers is the number of messages decoded concurrently. Handling and
	// commits stay in fetch order regardless.
	Workers int `yaml:"workers" envconfig:"KAFKA_WORKERS"`

	// TLS configuration
	TLS TLSConfig `yaml:"tls"`

	// SASL configuration
	SASL SASLConfig `yaml:"sasl"`
}

// TLSConfig contains TLS/SSL configuration
type TLSConfig struct {
	// Enabled turns on TLS for broker connections.
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_TLS_ENABLED"`

	// CACertPath is the path to the CA certificate.
	CACertPath string `yaml:"ca_cert_path" envconfig:"KAFKA_TLS_CA_CERT"`

	// ClientCertPath is the path to the client certificate.
	ClientCertPath string `yaml:"client_cert_path" envconfig:"KAFKA_TLS_CLIENT_CERT"`

	// ClientKeyPath is the path to the client key.
	ClientKeyPath string `yaml:"client_key_path" envconfig:"KAFKA_TLS_CLIENT_KEY"`

	// InsecureSkipVerify skips server certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" envconfig:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig contains SASL authentication configuration
type SASLConfig struct {
	// Enabled turns on SASL authentication.
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_SASL_ENABLED"`

	// Mechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	Mechanism string `yaml:"mechanism" envconfig:"KAFKA_SASL_MECHANISM"`

	// Username for SASL authentication
	Username string `yaml:"username" envconfig:"KAFKA_SASL_USERNAME"`

	// Password for SASL authentication
	Password string `yaml:"password" envconfig:"KAFKA_SASL_PASSWORD"`
}

func (cfg *Config) applyDefaults() {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = DefaultCommitInterval
	}
	if cfg.StartOffset == 0 {
		cfg.StartOffset = DefaultStartOffset
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
}
