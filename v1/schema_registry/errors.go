package schema_registry

import "errors"

// Schema resolution errors
var (
	// ErrFetchFailed is returned when the registry could not be reached or
	// answered with a non-success status.
	ErrFetchFailed = errors.New("schema_registry: fetch failed")

	// ErrTimeout is returned, alongside ErrFetchFailed, when a fetch ran out of time.
	ErrTimeout = errors.New("schema_registry: fetch timed out")

	// ErrUnexpectedStatus is returned when the registry answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("schema_registry: unexpected status")

	// ErrMalformedDocument is returned when the registry response is not a JSON
	// object with a non-empty "schema" string.
	ErrMalformedDocument = errors.New("schema_registry: malformed schema document")

	// ErrInvalidSchema is returned when the schema text does not parse.
	ErrInvalidSchema = errors.New("schema_registry: invalid schema")
)

// IsFetchFailedError checks if the error is a fetch failure.
func IsFetchFailedError(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// IsTimeoutError checks if the error is a fetch timeout.
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}
