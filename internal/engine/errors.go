package engine

import "errors"

var (
	// ErrMalformedRequest is returned for requests missing required fields.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrStoreFailure wraps record store errors. In-memory state is left
	// unchanged when it is returned.
	ErrStoreFailure = errors.New("record store failure")

	// ErrClosed is returned once the engine has been closed.
	ErrClosed = errors.New("engine closed")

	// ErrLoadStarted is returned when BulkLoad is called more than once.
	ErrLoadStarted = errors.New("bulk load already started")
)

// status labels a request outcome for metrics.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedRequest):
		return "malformed"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	default:
		return "error"
	}
}
