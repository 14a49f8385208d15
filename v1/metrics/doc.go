// Package metrics exposes the decoder's Prometheus collectors.
//
// A *Metrics value owns an isolated registry and an HTTP server serving it
// on /metrics. It satisfies both decoder.Observer and
// schema_registry.Observer, so the same value is handed to the decoder and
// the schema cache:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "avroframe"})
//	cache := schema_registry.NewCache(client).WithObserver(m)
//	dec := decoder.New(cfg, cache, log).WithObserver(m)
//	go m.Server.ListenAndServe()
//
// Collectors (all carry a constant service label and the optional namespace
// prefix):
//
//	records_total{outcome,stage}              accepted and rejected records
//	decode_duration_seconds{outcome}          time spent in Decode
//	schema_cache_lookups_total{result}        hit or miss
//	schema_fetch_duration_seconds{status}     registry round trips
//	schema_cache_entries                      cached schema count
//
// When EnableDefaultCollectors is set the Go runtime, process and build info
// collectors are registered as well.
//
// Inside an fx application use FXModule, which also manages the server
// lifecycle.
package metrics
