package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient wraps a zap.Logger behind the Logger interface used by the
// decoder, schema cache, tracer and Kafka consumer.
type LoggerClient struct {
	// Zap is exposed for integrations that need the raw logger, such as the
	// fx event logger.
	Zap *zap.Logger

	// tracingEnabled adds trace_id and span_id to *WithContext entries.
	tracingEnabled bool
}

// NewLoggerClient builds a JSON logger writing to stderr, so stdout stays
// free for decoded records. Entries carry ISO8601 timestamps, upper-case
// levels, the caller, the pid and cfg.ServiceName.
//
// An invalid zap configuration is a programming error and terminates the
// process.
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "avroframe"})
//	log.Warn("Record rejected", err, map[string]interface{}{"stage": "decoding"})
func NewLoggerClient(cfg Config) *LoggerClient {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:          "json",
		DisableStacktrace: true,
		EncoderConfig:     encoderCfg,
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	z, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}
	return NewFromZap(z, cfg.EnableTracing)
}

// NewFromZap wraps an existing zap logger. Tests use it with zaptest/observer.
func NewFromZap(z *zap.Logger, tracingEnabled bool) *LoggerClient {
	return &LoggerClient{Zap: z, tracingEnabled: tracingEnabled}
}

// NewNop returns a logger that discards everything.
func NewNop() *LoggerClient {
	return &LoggerClient{Zap: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
