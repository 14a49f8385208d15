package decoder

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/schema_registry"
	"github.com/Aleph-Alpha/avroframe/v1/tracer"
)

// FXModule provides the *Decoder, resolving schemas through the
// schema_registry cache.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    schema_registry.FXModule,
//	    decoder.FXModule,
//	    fx.Provide(func() decoder.Config {
//	        cfg := decoder.DefaultConfig()
//	        cfg.RegistryURL = "https://registry.local/schemas/ids/"
//	        return cfg
//	    }),
//	)
//
// An Observer and a *tracer.Tracer are picked up when present.
var FXModule = fx.Module("decoder",
	fx.Provide(NewDecoderWithDI),
)

// DecoderParams groups the dependencies needed to create a Decoder.
type DecoderParams struct {
	fx.In

	Config   Config
	Cache    *schema_registry.Cache
	Logger   logger.Logger
	Observer Observer       `optional:"true"`
	Tracer   *tracer.Tracer `optional:"true"`
}

// NewDecoderWithDI creates a Decoder using dependency injection.
func NewDecoderWithDI(params DecoderParams) *Decoder {
	d := NewDecoder(params.Config, params.Cache, params.Logger)
	if params.Observer != nil {
		d = d.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		d = d.WithTracer(params.Tracer)
	}
	return d
}
