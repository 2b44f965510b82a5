package reindex

import "errors"

var (
	// ErrCatalogRequired is returned when no catalog is supplied.
	ErrCatalogRequired = errors.New("catalog repository is required")
)
