package wire

import "errors"

// Framing errors
var (
	// ErrTooShort is returned when the buffer cannot hold the magic byte and schema id.
	ErrTooShort = errors.New("wire: frame too short")

	// ErrBadMagic is returned when the first byte does not match the configured magic byte.
	ErrBadMagic = errors.New("wire: bad magic byte")
)

// IsTooShortError checks if the error is a short frame error.
func IsTooShortError(err error) bool {
	return errors.Is(err, ErrTooShort)
}

// IsBadMagicError checks if the error is a magic byte mismatch.
func IsBadMagicError(err error) bool {
	return errors.Is(err, ErrBadMagic)
}
