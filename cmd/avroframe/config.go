package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/avroframe/v1/decoder"
	"github.com/Aleph-Alpha/avroframe/v1/kafka"
	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/metrics"
	"github.com/Aleph-Alpha/avroframe/v1/schema_registry"
	"github.com/Aleph-Alpha/avroframe/v1/tracer"
	"github.com/Aleph-Alpha/avroframe/v1/wire"
)

const (
	envPrefix   = "AVROFRAME"
	serviceName = "avroframe"
)

// settings is the configuration of every component, resolved from flags,
// AVROFRAME_* environment variables and defaults in that order.
type settings struct {
	Logger   logger.Config
	Registry schema_registry.Config
	Decoder  decoder.Config
	Metrics  metrics.Config
	Tracer   tracer.Config
	Kafka    kafka.Config
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(
		viper.EnvKeyReplacer(strings.NewReplacer("-", "_")),
	)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

func addCommonFlags(fs *pflag.FlagSet) {
	fs.String("registry-url", "", "schema registry base URL; the schema id is appended")
	fs.String("registry-username", "", "schema registry basic auth user")
	fs.String("registry-password", "", "schema registry basic auth password")
	fs.Duration("registry-timeout", schema_registry.DefaultTimeout, "schema fetch timeout")
	fs.Int("magic-byte", int(wire.DefaultMagicByte), "expected first byte of every frame (0-255)")
	fs.Int("schema-id-width", wire.DefaultSchemaIDWidth, "schema id bytes after the magic byte (0-4, larger values mean 4)")
	fs.Bool("derive-unixtime", false, "derive unixtime (ms) from a .NET ticks time field")
	fs.String("log-level", logger.Info, "debug, info, warning or error")
}

func addConsumeFlags(fs *pflag.FlagSet) {
	fs.StringSlice("brokers", []string{"localhost:9092"}, "Kafka brokers")
	fs.String("topic", "", "Kafka topic with framed records")
	fs.String("group-id", serviceName, "Kafka consumer group")
	fs.Int("workers", kafka.DefaultWorkers, "messages decoded concurrently")
	fs.String("metrics-address", metrics.DefaultMetricsAddress, "Prometheus listen address")
	fs.Bool("trace-export", false, "export spans over OTLP/HTTP")
}

// loadSettings binds the flags of cmd and reads the merged configuration.
func loadSettings(v *viper.Viper, cmd *cobra.Command) (settings, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return settings{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	magic := v.GetInt("magic-byte")
	if magic < 0 || magic > 0xFF {
		return settings{}, fmt.Errorf("magic-byte must be within 0..255, got %d", magic)
	}

	var s settings
	s.Logger = logger.Config{
		Level:         v.GetString("log-level"),
		EnableTracing: v.GetBool("trace-export"),
		ServiceName:   serviceName,
	}
	s.Registry = schema_registry.Config{
		URL:      v.GetString("registry-url"),
		Username: v.GetString("registry-username"),
		Password: v.GetString("registry-password"),
		Timeout:  v.GetDuration("registry-timeout"),
	}
	if s.Registry.Timeout <= 0 {
		s.Registry.Timeout = schema_registry.DefaultTimeout
	}

	s.Decoder = decoder.DefaultConfig()
	s.Decoder.RegistryURL = s.Registry.URL
	s.Decoder.MagicByte = byte(magic)
	s.Decoder.SchemaIDWidth = v.GetInt("schema-id-width")
	s.Decoder.DeriveUnixTime = v.GetBool("derive-unixtime")

	s.Metrics = metrics.Config{
		Address:                 v.GetString("metrics-address"),
		EnableDefaultCollectors: true,
		Namespace:               serviceName,
		ServiceName:             serviceName,
	}
	s.Tracer = tracer.Config{
		ServiceName:  serviceName,
		EnableExport: v.GetBool("trace-export"),
	}
	s.Kafka = kafka.Config{
		Brokers: splitList(v.GetStringSlice("brokers")),
		Topic:   v.GetString("topic"),
		GroupID: v.GetString("group-id"),
		Workers: v.GetInt("workers"),
		MaxWait: 500 * time.Millisecond,
	}
	return s, nil
}

// splitList accepts both repeated values and comma separated lists, which is
// what an environment variable carries.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
