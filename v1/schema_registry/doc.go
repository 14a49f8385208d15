// Package schema_registry fetches Avro schema documents by id and caches the
// parsed schemas.
//
// The registry is read-only from this package's point of view: there is no
// registration, compatibility checking or subject lookup. A schema is
// requested with a GET on the configured base URL with the numeric id
// appended, and the response must be a JSON object of the form
//
//	{"schema": "<avro schema JSON as a string>"}
//
// Core Features:
//   - HTTP(S) Fetcher with basic auth and a bounded timeout (default 30s)
//   - Unbounded, thread-safe cache of parsed schemas keyed by id
//   - One in-flight fetch per missing id, shared by concurrent callers
//   - Failed fetches and invalid documents are never cached, so the next
//     record carrying the same id retries automatically
//   - Optional Observer for cache and fetch metrics
//
// Basic Usage:
//
//	client, err := schema_registry.NewClient(schema_registry.Config{
//		URL:     "https://registry.local/schemas/ids/",
//		Timeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	cache := schema_registry.NewCache(client)
//	schema, err := cache.Resolve(ctx, 7)
//	switch {
//	case schema_registry.IsTimeoutError(err):
//		// registry too slow, try again with a later record
//	case err != nil:
//		return err
//	}
//
// Errors:
//
// Resolve failures match one of ErrFetchFailed, ErrMalformedDocument or
// ErrInvalidSchema with errors.Is. Timeouts match both ErrFetchFailed and
// ErrTimeout. Parser errors from the avro package stay reachable through the
// chain, e.g. errors.Is(err, avro.ErrUnknownType).
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		schema_registry.FXModule,
//		fx.Provide(func() schema_registry.Config { return loadConfig() }),
//	)
package schema_registry
