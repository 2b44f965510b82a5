package ingestion

import "errors"

var (
	// ErrCatalogRequired is returned when a catalog repository is not provided.
	ErrCatalogRequired = errors.New("catalog repository required")

	// ErrSourceRequired is returned when Run is called without a source.
	ErrSourceRequired = errors.New("source required")

	// ErrMissingColumn is returned when a CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidMaxAttempts is returned when the retry attempt count is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrBatchFailed is returned when a batch could not be written.
	ErrBatchFailed = errors.New("batch write failed")
)
