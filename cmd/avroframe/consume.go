package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	segmentio "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Aleph-Alpha/avroframe/v1/decoder"
	"github.com/Aleph-Alpha/avroframe/v1/kafka"
	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/metrics"
	"github.com/Aleph-Alpha/avroframe/v1/record"
	"github.com/Aleph-Alpha/avroframe/v1/schema_registry"
	"github.com/Aleph-Alpha/avroframe/v1/tracer"
)

func newConsumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Decode records from a Kafka topic and print them as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(newViper(), cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runConsume(ctx, s, newRecordWriter(cmd.OutOrStdout()))
		},
	}
	addConsumeFlags(cmd.Flags())
	return cmd
}

// newConsumeApp wires logger, metrics, tracer, schema cache, decoder and the
// Kafka consumer.
func newConsumeApp(s settings, opts ...fx.Option) *fx.App {
	return fx.New(
		fx.Supply(s.Logger, s.Metrics, s.Tracer, s.Registry, s.Decoder, s.Kafka),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		schema_registry.FXModule,
		decoder.FXModule,
		kafka.FXModule,
		fx.Provide(
			func(m *metrics.Metrics) schema_registry.Observer { return m },
			func(m *metrics.Metrics) decoder.Observer { return m },
		),
		fx.Options(opts...),
	)
}

func runConsume(ctx context.Context, s settings, out *recordWriter) error {
	var (
		consumer *kafka.Consumer
		log      logger.Logger
	)
	app := newConsumeApp(s, fx.Populate(&consumer, &log))
	if err := app.Err(); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	runErr := consumer.Run(ctx, func(ctx context.Context, msg segmentio.Message, rec record.Record) error {
		err := out.Write(rec)
		if errors.Is(err, errUnrepresentable) {
			log.Warn("Dropping record", err, map[string]interface{}{
				"topic":     msg.Topic,
				"partition": msg.Partition,
				"offset":    msg.Offset,
			})
			return nil
		}
		return err
	})
	if runErr != nil {
		log.Error("Kafka consumer failed", runErr, nil)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return errors.Join(runErr, app.Stop(stopCtx))
}
