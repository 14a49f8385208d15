package avro

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// MaxDepth is the deepest nesting of records, arrays, maps and unions
	// Decode will follow before giving up with ErrMaxDepth.
	MaxDepth = 1024

	// MaxZeroWidthItems bounds the total number of array or map entries whose
	// items occupy no bytes on the wire (for example an array of null) that a
	// single Decode call will produce, across all nested containers.
	MaxZeroWidthItems = 1 << 16
)

// Record is a decoded Avro record: field name to decoded value.
type Record map[string]any

// Decode decodes payload according to schema.
//
// Parameters:
//   - schema: The schema the payload was written with
//   - payload: The Avro binary encoding of a single datum
//
// Returns:
//   - any: The decoded value (see the package documentation for the mapping)
//   - error: ErrTruncated, ErrBadUnionIndex, ErrBadEnumIndex, ErrInvalidVarint,
//     ErrInvalidLength, ErrMaxDepth or ErrTooManyItems, wrapped with the offset
//     and field path where decoding stopped
//
// Bytes after the end of the datum are ignored. Decode is safe for
// concurrent use with the same schema.
//
// Example:
//
//	v, err := avro.Decode(schema, []byte{0x06, 'b', 'o', 'b', 0x3c})
//	// v == avro.Record{"name": "bob", "age": int32(30)}
func Decode(schema *Schema, payload []byte) (any, error) {
	d := &decoder{buf: payload}
	return d.value(schema, 0)
}

type decoder struct {
	buf []byte
	pos int

	// zeroWidthItems counts zero-width entries produced so far.
	zeroWidthItems int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.pos
}

func (d *decoder) truncated(need int) error {
	return fmt.Errorf("%w: need %d bytes at offset %d, %d remaining", ErrTruncated, need, d.pos, d.remaining())
}

func (d *decoder) value(s *Schema, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: %d levels at offset %d", ErrMaxDepth, depth, d.pos)
	}

	switch s.Type {
	case Null:
		return nil, nil
	case Boolean:
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		return b != 0, nil
	case Int:
		return d.readInt()
	case Long:
		return d.readLong()
	case Float:
		b, err := d.readFixed(4)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	case Double:
		b, err := d.readFixed(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	case Bytes:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		return append([]byte{}, b...), nil
	case String:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case Fixed:
		b, err := d.readFixed(s.Size)
		if err != nil {
			return nil, err
		}
		return append([]byte{}, b...), nil
	case Enum:
		idx, err := d.readInt()
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(s.Symbols) {
			return nil, fmt.Errorf("%w: %d for enum %s with %d symbols", ErrBadEnumIndex, idx, s, len(s.Symbols))
		}
		return s.Symbols[idx], nil
	case Union:
		idx, err := d.readLong()
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= int64(len(s.Branches)) {
			return nil, fmt.Errorf("%w: %d for union with %d branches", ErrBadUnionIndex, idx, len(s.Branches))
		}
		return d.value(s.Branches[idx], depth+1)
	case RecordType:
		return d.record(s, depth)
	case Array:
		return d.array(s, depth)
	case Map:
		return d.mapValue(s, depth)
	default:
		return nil, fmt.Errorf("%w: cannot decode %s", ErrUnknownType, s.Type)
	}
}

func (d *decoder) record(s *Schema, depth int) (Record, error) {
	rec := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		v, err := d.value(f.Type, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s, f.Name, err)
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func (d *decoder) array(s *Schema, depth int) ([]any, error) {
	items := []any{}
	zeroWidth := isZeroWidth(s.Items, nil)
	for {
		count, err := d.blockCount(s.Items, zeroWidth)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return items, nil
		}
		for i := 0; i < count; i++ {
			v, err := d.value(s.Items, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", len(items), err)
			}
			items = append(items, v)
		}
	}
}

func (d *decoder) mapValue(s *Schema, depth int) (map[string]any, error) {
	m := map[string]any{}
	for {
		// Every entry carries at least its key length, so entries are never
		// zero width.
		count, err := d.blockCount(s.Values, false)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return m, nil
		}
		for i := 0; i < count; i++ {
			key, err := d.readBytes()
			if err != nil {
				return nil, err
			}
			v, err := d.value(s.Values, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", key, err)
			}
			m[string(key)] = v
		}
	}
}

// blockCount reads the item count of the next block of an array or map.
// Negative counts are followed by the block size in bytes, which is skipped.
// Zero-width blocks are charged against the budget shared by the whole Decode.
func (d *decoder) blockCount(items *Schema, zeroWidth bool) (int, error) {
	n, err := d.readLong()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		if n == math.MinInt64 {
			return 0, fmt.Errorf("%w: block count %d", ErrInvalidLength, n)
		}
		n = -n
		size, err := d.readLong()
		if err != nil {
			return 0, err
		}
		if size < 0 {
			return 0, fmt.Errorf("%w: block size %d", ErrInvalidLength, size)
		}
	}

	if zeroWidth {
		if n > int64(MaxZeroWidthItems-d.zeroWidthItems) {
			return 0, fmt.Errorf("%w: %d %s items after %d at offset %d", ErrTooManyItems, n, items, d.zeroWidthItems, d.pos)
		}
		d.zeroWidthItems += int(n)
	} else if n > int64(d.remaining()) {
		// Each item needs at least one byte.
		return 0, fmt.Errorf("%w: block of %d items at offset %d, %d bytes remaining", ErrTruncated, n, d.pos, d.remaining())
	}
	return int(n), nil
}

// isZeroWidth reports whether values of s may occupy no bytes at all.
func isZeroWidth(s *Schema, visiting map[*Schema]bool) bool {
	switch s.Type {
	case Null:
		return true
	case Fixed:
		return s.Size == 0
	case RecordType:
		if visiting[s] {
			return false
		}
		if visiting == nil {
			visiting = make(map[*Schema]bool)
		}
		visiting[s] = true
		defer delete(visiting, s)
		for _, f := range s.Fields {
			if !isZeroWidth(f.Type, visiting) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, d.truncated(1)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// readFixed returns the next n bytes without copying.
func (d *decoder) readFixed(n int) ([]byte, error) {
	if n > d.remaining() {
		return nil, d.truncated(n)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// readBytes reads a long length prefix followed by that many bytes.
func (d *decoder) readBytes() ([]byte, error) {
	n, err := d.readLong()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d at offset %d", ErrInvalidLength, n, d.pos)
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, %d remaining", ErrTruncated, n, d.pos, d.remaining())
	}
	return d.readFixed(int(n))
}

// readVarint reads an unsigned LEB128 value of at most maxBytes bytes.
func (d *decoder) readVarint(maxBytes int) (uint64, error) {
	start := d.pos
	var v uint64
	for i := 0; i < maxBytes; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if i == 9 && b > 1 {
				break
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: more than %d bits at offset %d", ErrInvalidVarint, 7*maxBytes, start)
}

func (d *decoder) readInt() (int32, error) {
	start := d.pos
	u, err := d.readVarint(5)
	if err != nil {
		return 0, err
	}
	v := int64(u>>1) ^ -int64(u&1)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d overflows int at offset %d", ErrInvalidVarint, v, start)
	}
	return int32(v), nil
}

func (d *decoder) readLong() (int64, error) {
	u, err := d.readVarint(10)
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}
