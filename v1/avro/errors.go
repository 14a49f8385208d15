package avro

import "errors"

// Schema parsing errors
var (
	// ErrSyntax is returned when a schema document is malformed.
	ErrSyntax = errors.New("avro: schema syntax error")

	// ErrUnknownType is returned when a schema references a type that is neither
	// a primitive nor a named type defined earlier in the same document.
	ErrUnknownType = errors.New("avro: unknown type")

	// ErrDuplicateField is returned when a record declares the same field name twice.
	ErrDuplicateField = errors.New("avro: duplicate field")
)

// Binary decoding errors
var (
	// ErrTruncated is returned when decoding would read past the end of the payload.
	ErrTruncated = errors.New("avro: payload truncated")

	// ErrBadUnionIndex is returned when a union branch index is out of range.
	ErrBadUnionIndex = errors.New("avro: union index out of range")

	// ErrBadEnumIndex is returned when an enum symbol index is out of range.
	ErrBadEnumIndex = errors.New("avro: enum index out of range")

	// ErrInvalidVarint is returned when a variable-length integer overflows its type.
	ErrInvalidVarint = errors.New("avro: invalid varint")

	// ErrInvalidLength is returned for negative byte, string or block lengths.
	ErrInvalidLength = errors.New("avro: invalid length")

	// ErrMaxDepth is returned when nesting exceeds MaxDepth.
	ErrMaxDepth = errors.New("avro: maximum nesting depth exceeded")

	// ErrTooManyItems is returned when arrays or maps of zero-width items
	// announce more than MaxZeroWidthItems entries in one datum.
	ErrTooManyItems = errors.New("avro: too many items")
)

// IsSchemaError reports whether err came from schema parsing.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSyntax) || errors.Is(err, ErrUnknownType) || errors.Is(err, ErrDuplicateField)
}

// IsTruncatedError checks if the error is a truncated payload error.
func IsTruncatedError(err error) bool {
	return errors.Is(err, ErrTruncated)
}
