// Package record turns decoded Avro records into flat output records carrying
// schema metadata.
package record

import (
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/avroframe/v1/avro"
)

const (
	// SchemaIDKey holds the schema id the record was decoded with.
	SchemaIDKey = "schema_id"

	// SchemaSourceKey holds the registry base URL the schema was fetched from.
	SchemaSourceKey = "schema_source"

	// UnixTimeKey is the field derived by WithUnixTime.
	UnixTimeKey = "unixtime"

	// TimeKey is the .NET ticks field WithUnixTime derives from.
	TimeKey = "time"

	// dotNetEpochTicks is 1970-01-01T00:00:00Z in 100ns ticks since 0001-01-01.
	dotNetEpochTicks = 621355968000000000
)

// ErrNotARecord is returned when the decoded top-level value is not a record.
var ErrNotARecord = errors.New("record: top-level value is not a record")

// Record is the output of Assemble: top-level fields plus metadata.
type Record map[string]any

// SchemaID returns the schema id metadata.
func (r Record) SchemaID() uint32 {
	id, _ := r[SchemaIDKey].(uint32)
	return id
}

// Source returns the schema source metadata.
func (r Record) Source() string {
	s, _ := r[SchemaSourceKey].(string)
	return s
}

type options struct {
	unixTime bool
}

// Option configures Assemble.
type Option func(*options)

// WithUnixTime derives UnixTimeKey (milliseconds since the Unix epoch) from a
// TimeKey field holding .NET ticks when the record has no UnixTimeKey value
// of its own. A null UnixTimeKey counts as absent. Records without a usable
// TimeKey are left untouched.
func WithUnixTime() Option {
	return func(o *options) {
		o.unixTime = true
	}
}

// Assemble flattens a decoded record and adds the metadata keys.
//
// Metadata always wins: a decoded field named SchemaIDKey or SchemaSourceKey
// is overwritten. Use Shadowed to find out whether that happened.
//
// Parameters:
//   - decoded: The value returned by avro.Decode
//   - schemaID: The id the schema was resolved with
//   - source: The registry base URL
//   - opts: Optional behaviors such as WithUnixTime
//
// Returns ErrNotARecord if decoded is not an avro.Record.
func Assemble(decoded any, schemaID uint32, source string, opts ...Option) (Record, error) {
	rec, ok := decoded.(avro.Record)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotARecord, decoded)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	out := make(Record, len(rec)+3)
	for k, v := range rec {
		out[k] = v
	}

	if o.unixTime {
		if out[UnixTimeKey] == nil {
			if ms, ok := unixMillisFromTicks(out[TimeKey]); ok {
				out[UnixTimeKey] = ms
			}
		}
	}

	out[SchemaIDKey] = schemaID
	out[SchemaSourceKey] = source
	return out, nil
}

// Shadowed returns the decoded field names that Assemble would overwrite with
// metadata.
func Shadowed(decoded any) []string {
	rec, ok := decoded.(avro.Record)
	if !ok {
		return nil
	}
	var names []string
	for _, k := range []string{SchemaIDKey, SchemaSourceKey} {
		if _, ok := rec[k]; ok {
			names = append(names, k)
		}
	}
	return names
}

func unixMillisFromTicks(v any) (int64, bool) {
	var ticks int64
	switch t := v.(type) {
	case int64:
		ticks = t
	case int32:
		ticks = int64(t)
	default:
		return 0, false
	}
	return (ticks - dotNetEpochTicks) / 10000, true
}
