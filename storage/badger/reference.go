package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

// ReferenceRepository implements storage.ReferenceRepository for BadgerDB.
type ReferenceRepository struct {
	backend *Backend
}

var _ storage.ReferenceRepository = (*ReferenceRepository)(nil)

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(backend *Backend) (*ReferenceRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &ReferenceRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ReferenceRepository has no resources to release.
func (r *ReferenceRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ReferenceRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutReferences inserts or replaces reference entries.
func (r *ReferenceRepository) PutReferences(ctx context.Context, entries ...*core.ReferenceEntry) ([]*core.ReferenceEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, entry := range entries {
			if err := core.ValidateReference(entry); err != nil {
				return err
			}
			entry.Code = strings.ToUpper(strings.TrimSpace(entry.Code))
			entry.Id = core.ReferenceID(entry.Kind, entry.Code)
			entry.UpdatedAt = now

			if err := tx.Set(makeReferenceKey(entry.Id), storage.MarshalReference(entry)); err != nil {
				return err
			}
			if err := tx.Set(makeReferenceCodeKey(entry.Kind, entry.Code), storage.MarshalID(entry.Id)); err != nil {
				return err
			}
		}
		return commit(tx)
	}, true)

	return entries, err
}

// GetReference finds an entry by kind and code.
func (r *ReferenceRepository) GetReference(ctx context.Context, kind core.ReferenceKind, code string) (*core.ReferenceEntry, error) {
	var result *core.ReferenceEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from code index
		item, err := tx.Get(makeReferenceCodeKey(kind, code))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		err = item.Value(func(val []byte) error {
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readReference(tx, makeReferenceKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetReferenceByID finds an entry by ID.
func (r *ReferenceRepository) GetReferenceByID(ctx context.Context, id core.ID) (*core.ReferenceEntry, error) {
	var result *core.ReferenceEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readReference(tx, makeReferenceKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListReferences returns all entries of a kind ordered by code.
func (r *ReferenceRepository) ListReferences(ctx context.Context, kind core.ReferenceKind) ([]*core.ReferenceEntry, error) {
	if err := core.ValidateReferenceKind(kind); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	results := []*core.ReferenceEntry{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeReferenceKindPrefix(kind)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			entry, err := readReference(tx, makeReferenceKey(id))
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	return results, err
}

// readReference reads a reference entry from the transaction.
func readReference(tx *badger.Txn, key []byte) (*core.ReferenceEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.ReferenceEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalReference(val)
		return err
	})
	return entry, err
}
