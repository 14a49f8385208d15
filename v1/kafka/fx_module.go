package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/avroframe/v1/decoder"
	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/tracer"
)

// FXModule provides the *Consumer and closes it on application stop.
// Starting Run is left to the application, which owns the Handler.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    schema_registry.FXModule,
//	    decoder.FXModule,
//	    kafka.FXModule,
//	    fx.Provide(func() kafka.Config {
//	        return kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "events", GroupID: "avroframe"}
//	    }),
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(NewConsumerWithDI),
	fx.Invoke(RegisterConsumerLifecycle),
)

// ConsumerParams groups the dependencies needed to create a Consumer.
type ConsumerParams struct {
	fx.In

	Config  Config
	Decoder *decoder.Decoder
	Logger  logger.Logger
	Tracer  *tracer.Tracer `optional:"true"`
}

// NewConsumerWithDI creates a Consumer using dependency injection.
func NewConsumerWithDI(params ConsumerParams) (*Consumer, error) {
	c, err := NewConsumer(params.Config, params.Decoder, params.Logger)
	if err != nil {
		return nil, err
	}
	if params.Tracer != nil {
		c = c.WithPropagator(params.Tracer)
	}
	return c, nil
}

// RegisterConsumerLifecycle logs the subscription on start and closes the
// reader on stop.
func RegisterConsumerLifecycle(lc fx.Lifecycle, c *Consumer, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Kafka consumer initialized", nil, map[string]interface{}{
				"brokers":  c.cfg.Brokers,
				"topic":    c.cfg.Topic,
				"group_id": c.cfg.GroupID,
				"workers":  c.cfg.Workers,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Closing Kafka consumer", nil, nil)
			return c.Close()
		},
	})
}
