package decoder

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a record was rejected at.
type Stage string

const (
	StageFraming    Stage = "framing"
	StageResolution Stage = "schema_resolution"
	StageDecoding   Stage = "decoding"
	StageAssembly   Stage = "assembly"
)

// RejectError reports why a record was not emitted.
//
// It unwraps to the stage error, so errors.Is works with the sentinels of
// the wire, schema_registry, avro and record packages.
type RejectError struct {
	Stage    Stage
	SchemaID uint32
	Err      error
}

func (e *RejectError) Error() string {
	if e.Stage == StageFraming {
		return fmt.Sprintf("record rejected at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("record rejected at %s (schema %d): %v", e.Stage, e.SchemaID, e.Err)
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

// IsRejectError reports whether err is a record rejection.
func IsRejectError(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// StageOf returns the stage of a rejection, or "" if err is not one.
func StageOf(err error) Stage {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Stage
	}
	return ""
}
