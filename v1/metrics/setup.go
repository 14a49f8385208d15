package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the decoder collectors and the server that exposes them.
type Metrics struct {
	// Server serves /metrics. Its lifecycle belongs to the caller or FXModule.
	Server *http.Server

	// Registry is private to this instance, so tests and multiple decoders in
	// one process never collide on collector names.
	Registry *prometheus.Registry

	recordsTotal        *prometheus.CounterVec
	decodeDuration      *prometheus.HistogramVec
	schemaLookups       *prometheus.CounterVec
	schemaFetchDuration *prometheus.HistogramVec
	schemaCacheEntries  prometheus.Gauge
}

// NewMetrics registers the decoder and schema cache collectors on a fresh
// registry, labelled with service=cfg.ServiceName and prefixed with
// cfg.Namespace, and prepares (but does not start) the HTTP server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "avroframe"})
//	cache := schema_registry.NewCache(client).WithObserver(m)
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}

	registry := prometheus.NewRegistry()

	var registerer prometheus.Registerer = prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)
	if cfg.Namespace != "" {
		registerer = prometheus.WrapRegistererWithPrefix(cfg.Namespace+"_", registerer)
	}

	m := &Metrics{
		Registry: registry,
	}

	m.recordsTotal = createCounterVec("records_total", "Decoded records by outcome and failing stage", []string{"outcome", "stage"})
	m.decodeDuration = createHistogramVec("decode_duration_seconds", "Duration of a full record decode", []string{"outcome"}, prometheus.ExponentialBuckets(0.00001, 4, 10))
	m.schemaLookups = createCounterVec("schema_cache_lookups_total", "Schema cache lookups by result", []string{"result"})
	m.schemaFetchDuration = createHistogramVec("schema_fetch_duration_seconds", "Duration of schema registry fetches", []string{"status"}, prometheus.DefBuckets)
	m.schemaCacheEntries = createGauge("schema_cache_entries", "Number of schemas held in the cache")

	registerer.MustRegister(
		m.recordsTotal,
		m.decodeDuration,
		m.schemaLookups,
		m.schemaFetchDuration,
		m.schemaCacheEntries,
	)

	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
