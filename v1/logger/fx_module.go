package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *LoggerClient and the Logger interface built from a
// logger.Config in the container, and flushes the logger on stop.
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		func(l *LoggerClient) Logger { return l },
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle syncs buffered entries when the application stops.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr returns EINVAL/ENOTTY on some platforms; ignore it.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
