package badger

import "github.com/poiesic/tickerdex/storage"

// NewMemoryRepositories creates in-memory catalog and reference repositories for testing.
// Returns catalog, references, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.CatalogRepository, storage.ReferenceRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	catalog, err := NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	references, err := NewReferenceRepository(backend)
	if err != nil {
		catalog.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return catalog, references, backend, nil
}
