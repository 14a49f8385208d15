package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Aleph-Alpha/avroframe/v1/record"
)

// recordWriter prints records as JSON lines. Byte values are base64 encoded
// by encoding/json.
type recordWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newRecordWriter(w io.Writer) *recordWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &recordWriter{enc: enc}
}

// errUnrepresentable marks records JSON cannot carry, such as NaN doubles.
var errUnrepresentable = errors.New("record not representable as JSON")

func (w *recordWriter) Write(rec record.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(rec); err != nil {
		var unsupported *json.UnsupportedValueError
		if errors.As(err, &unsupported) {
			return fmt.Errorf("%w: %w", errUnrepresentable, err)
		}
		return err
	}
	return nil
}
