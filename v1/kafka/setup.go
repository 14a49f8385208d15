package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/Aleph-Alpha/avroframe/v1/record"
)

// RecordDecoder decodes a message value. *decoder.Decoder implements it.
type RecordDecoder interface {
	Decode(ctx context.Context, buf []byte) (record.Record, error)
}

// Logger defines the logging methods used by the consumer.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Propagator restores a trace context from message headers.
// *tracer.Tracer implements it.
type Propagator interface {
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads framed records from a topic, decodes them and hands the
// results to a Handler.
type Consumer struct {
	cfg        Config
	reader     messageReader
	decoder    RecordDecoder
	logger     Logger
	propagator Propagator
}

// NewConsumer creates a Consumer for cfg.Topic in consumer group cfg.GroupID.
//
// Example:
//
//	c, err := kafka.NewConsumer(kafka.Config{
//	    Brokers: []string{"localhost:9092"},
//	    Topic:   "events",
//	    GroupID: "avroframe",
//	}, dec, log)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
func NewConsumer(cfg Config, dec RecordDecoder, logger Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New("kafka: group id is required for offset commits")
	}
	cfg.applyDefaults()

	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	return newConsumer(cfg, createReader(cfg, tlsConfig, mechanism, logger), dec, logger), nil
}

func newConsumer(cfg Config, reader messageReader, dec RecordDecoder, logger Logger) *Consumer {
	cfg.applyDefaults()
	return &Consumer{
		cfg:     cfg,
		reader:  reader,
		decoder: dec,
		logger:  logger,
	}
}

// WithPropagator makes decode spans children of the producer's span when
// messages carry W3C trace headers.
func (c *Consumer) WithPropagator(p Propagator) *Consumer {
	c.propagator = p
	return c
}

// Close closes the underlying reader. Pending commits are flushed.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// createReader creates a Kafka reader with the given configuration
func createReader(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism, logger Logger) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		StartOffset:    cfg.StartOffset,
		CommitInterval: cfg.CommitInterval,
		ErrorLogger:    errorLogger(logger),
		Dialer: &kafka.Dialer{
			TLS:           tlsConfig,
			SASLMechanism: mechanism,
		},
	})
}

func errorLogger(logger Logger) kafka.LoggerFunc {
	return func(msg string, args ...interface{}) {
		logger.Error("Kafka internal error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	}
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a SASL mechanism from the provided config
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}

// headerCarrier turns message headers into a propagation carrier.
func headerCarrier(headers []kafka.Header) map[string]string {
	carrier := make(map[string]string, len(headers))
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return carrier
}
