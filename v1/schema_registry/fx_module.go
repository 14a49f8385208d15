package schema_registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/avroframe/v1/logger"
)

// FXModule is an fx.Module that provides the registry client and the schema cache.
//
// The module:
// 1. Provides the HTTP client as both *Client and Fetcher
// 2. Provides the *Cache built on top of the Fetcher
// 3. Invokes the lifecycle registration to log startup and shutdown
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() schema_registry.Config {
//	            return schema_registry.Config{
//	                URL: "https://registry.local/schemas/ids/",
//	            }
//	        },
//	    ),
//	)
//
// An Observer is optional; provide one to collect cache metrics.
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
		func(c *Client) Fetcher { return c },
		NewCacheWithDI,
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a Schema Registry client
type SchemaRegistryParams struct {
	fx.In

	Config Config
}

// NewClientWithDI creates a new Schema Registry client using dependency injection.
func NewClientWithDI(params SchemaRegistryParams) (*Client, error) {
	return NewClient(params.Config)
}

// CacheParams groups the dependencies needed to create the schema cache.
type CacheParams struct {
	fx.In

	Fetcher  Fetcher
	Logger   logger.Logger
	Observer Observer `optional:"true"`
}

// NewCacheWithDI creates the schema cache using dependency injection.
func NewCacheWithDI(params CacheParams) *Cache {
	cache := NewCache(params.Fetcher).WithLogger(params.Logger)
	if params.Observer != nil {
		cache = cache.WithObserver(params.Observer)
	}
	return cache
}

// SchemaRegistryLifecycleParams groups the dependencies needed for Schema Registry lifecycle management
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *Client
	Cache     *Cache
	Logger    logger.Logger
}

// RegisterSchemaRegistryLifecycle registers the Schema Registry client with the fx lifecycle system.
//
// The function:
//  1. On application start: Logs the registry URL
//  2. On application stop: Logs how many schemas were cached (HTTP client is stateless)
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Logger.Info("Schema Registry client initialized", nil, map[string]interface{}{
				"url": params.Client.URL(),
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Schema Registry client shutdown", nil, map[string]interface{}{
				"cached_schemas": params.Cache.Len(),
			})
			return nil
		},
	})
}
