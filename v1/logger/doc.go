// Package logger provides structured logging for the decoding service.
//
// It wraps Uber's zap with a small, uniform API: every method takes a message,
// an optional error and optional maps of structured fields.
//
// Basic Usage:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "avroframe",
//	})
//
//	log.Info("Schema cached", nil, map[string]interface{}{
//		"schema_id": 7,
//	})
//	log.Warn("Record rejected", err, map[string]interface{}{
//		"stage": "decoding",
//	})
//
// # Context-Aware Logging
//
// When Config.EnableTracing is set, the *WithContext methods add the trace_id
// and span_id of the active OpenTelemetry span in ctx:
//
//	log.WarnWithContext(ctx, "Record rejected", err, nil)
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: "debug"}
//		}),
//	)
//
// The module provides both *logger.LoggerClient and the logger.Logger
// interface, and syncs buffered entries on shutdown.
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # Log level (debug, info, warning, error)
//	LOGGER_ENABLE_TRACING=true      # Add trace/span ids to context-aware entries
//
// All output goes to stderr.
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
