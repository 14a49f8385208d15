package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
)

// ObserveDecode records the outcome of one Decode call.
// Example: metrics.ObserveDecode("schema_resolution", time.Since(start), err)
func (m *Metrics) ObserveDecode(stage string, duration time.Duration, err error) {
	outcome := outcomeAccepted
	if err != nil {
		outcome = outcomeRejected
	} else {
		stage = "none"
	}
	m.recordsTotal.WithLabelValues(outcome, stage).Inc()
	m.decodeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveLookup counts a schema cache lookup.
func (m *Metrics) ObserveLookup(id uint32, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.schemaLookups.WithLabelValues(result).Inc()
}

// ObserveFetch records a schema registry fetch.
func (m *Metrics) ObserveFetch(id uint32, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.schemaFetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveCacheSize sets the schema cache size gauge.
func (m *Metrics) ObserveCacheSize(n int) {
	m.schemaCacheEntries.Set(float64(n))
}

// createCounterVec defines a new CounterVec with standard options.
// Used internally by NewMetrics to maintain consistency.
func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
// Used internally by NewMetrics for latency tracking.
func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

func createGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
}
