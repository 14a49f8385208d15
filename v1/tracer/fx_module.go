package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/avroframe/v1/logger"
)

// FXModule provides *Tracer and flushes it when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config { return tracer.Config{ServiceName: "avroframe"} }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterTracerLifecycle),
)

// NewClientWithDI adapts NewClient to the container's logger.
func NewClientWithDI(cfg Config, log logger.Logger) (*Tracer, error) {
	return NewClient(cfg, log)
}

// RegisterTracerLifecycle shuts the tracer down on application stop so
// buffered spans reach the exporter.
func RegisterTracerLifecycle(lc fx.Lifecycle, t *Tracer, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down tracer", nil, nil)
			return t.Shutdown(ctx)
		},
	})
}
