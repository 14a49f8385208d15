package wire

import "fmt"

const (
	// DefaultMagicByte is the magic identifier used when none is configured.
	DefaultMagicByte byte = 0xFF

	// DefaultSchemaIDWidth is the schema id width in bytes used when none is configured.
	DefaultSchemaIDWidth = 4

	// MaxSchemaIDWidth is the largest supported schema id width in bytes.
	MaxSchemaIDWidth = 4
)

// Frame is a parsed message header plus a view of its payload.
type Frame struct {
	// Magic is the first byte of the buffer.
	Magic byte

	// SchemaID is the little-endian schema identifier.
	SchemaID uint32

	// Payload is the remainder of the buffer after the header. It aliases the
	// buffer passed to Parse and may be empty.
	Payload []byte
}

// ClampWidth returns the effective schema id width for a configured value.
// Widths outside [0, MaxSchemaIDWidth] are coerced to MaxSchemaIDWidth.
func ClampWidth(width int) int {
	if width < 0 || width > MaxSchemaIDWidth {
		return MaxSchemaIDWidth
	}
	return width
}

// HeaderSize returns the number of bytes preceding the payload for the given width.
func HeaderSize(width int) int {
	return 1 + ClampWidth(width)
}

// Parse splits buf into magic byte, schema id and payload.
//
// Parameters:
//   - buf: The raw message
//   - schemaIDWidth: Width of the schema id in bytes; clamped with ClampWidth
//   - magic: The expected magic byte
//
// Returns ErrTooShort if buf is shorter than the header and ErrBadMagic if the
// first byte differs from magic. The length check runs first, so an empty
// buffer is always ErrTooShort.
//
// Example:
//
//	frame, err := wire.Parse([]byte{0xFF, 7, 0, 0, 0, 0x06, 'b', 'o', 'b'}, 4, 0xFF)
//	// frame.SchemaID == 7, frame.Payload == []byte{0x06, 'b', 'o', 'b'}
func Parse(buf []byte, schemaIDWidth int, magic byte) (Frame, error) {
	width := ClampWidth(schemaIDWidth)
	if len(buf) < 1+width {
		return Frame{}, fmt.Errorf("%w: need at least %d bytes, got %d", ErrTooShort, 1+width, len(buf))
	}

	if buf[0] != magic {
		return Frame{}, fmt.Errorf("%w: expected 0x%02x, got 0x%02x", ErrBadMagic, magic, buf[0])
	}

	var id uint32
	for i := 0; i < width; i++ {
		id |= uint32(buf[1+i]) << (8 * i)
	}

	return Frame{
		Magic:    buf[0],
		SchemaID: id,
		Payload:  buf[1+width:],
	}, nil
}

// Encode builds a frame from its parts. Bits of schemaID that do not fit in
// the (clamped) width are dropped.
func Encode(magic byte, schemaID uint32, schemaIDWidth int, payload []byte) []byte {
	width := ClampWidth(schemaIDWidth)
	buf := make([]byte, 1+width+len(payload))
	buf[0] = magic
	for i := 0; i < width; i++ {
		buf[1+i] = byte(schemaID >> (8 * i))
	}
	copy(buf[1+width:], payload)
	return buf
}
