package metrics

import "time"

// MetricsCollector provides the decoding service's metric operations.
//
// This interface is implemented by the concrete *Metrics type, which also
// satisfies decoder.Observer and schema_registry.Observer.
type MetricsCollector interface {
	// ObserveDecode records the outcome of one Decode call. An empty stage or
	// nil err means the record was accepted.
	ObserveDecode(stage string, duration time.Duration, err error)

	// ObserveLookup counts schema cache hits and misses.
	ObserveLookup(id uint32, hit bool)

	// ObserveFetch records registry fetch latency and outcome.
	ObserveFetch(id uint32, duration time.Duration, err error)

	// ObserveCacheSize sets the number of cached schemas.
	ObserveCacheSize(n int)
}
