package decoder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/avroframe/v1/logger"
	"github.com/Aleph-Alpha/avroframe/v1/schema_registry"
	"github.com/Aleph-Alpha/avroframe/v1/wire"
)

func TestFXModule(t *testing.T) {
	reg := newRegistry(t, map[string]string{"7": personSchema})
	obs := &fakeObserver{}

	var dec *Decoder
	app := fxtest.New(t,
		fx.Supply(
			logger.Config{Level: logger.Error},
			schema_registry.Config{URL: reg.base(), Timeout: 5 * time.Second},
		),
		fx.Provide(
			func() Config {
				cfg := DefaultConfig()
				cfg.RegistryURL = reg.base()
				return cfg
			},
			func() Observer { return obs },
		),
		logger.FXModule,
		schema_registry.FXModule,
		FXModule,
		fx.Populate(&dec),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, dec)
	rec, err := dec.Decode(context.Background(), wire.Encode(0xFF, 7, 4, bob))
	require.NoError(t, err)
	assert.Equal(t, "bob", rec["name"])
	assert.Equal(t, reg.base(), rec.Source())
	assert.Len(t, obs.events, 1)
}
