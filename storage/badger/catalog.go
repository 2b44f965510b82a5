package badger

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

// ctxCheckInterval is how many index entries a scan visits between
// context cancellation checks.
const ctxCheckInterval = 256

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
//
// Each security is stored once under its ID and indexed twice: by normalized
// symbol and by normalized name. Both index keys end in the big-endian ID, so
// iterating the symbol index yields rows in the catalog's result order.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &CatalogRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CatalogRepository has no resources to release.
func (r *CatalogRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSecurities inserts or replaces securities.
func (r *CatalogRepository) AddSecurities(ctx context.Context, securities ...*core.Security) ([]*core.Security, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, security := range securities {
			if err := core.ValidateSecurity(security); err != nil {
				return err
			}
			security.Symbol = strings.TrimSpace(security.Symbol)
			security.Name = strings.TrimSpace(security.Name)

			// Use content-based ID if not set
			if security.Id == 0 {
				security.Id = core.IDFromContent(security.ContentKey())
			}

			key := makeSecurityKey(security.Id)
			old, err := readSecurity(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				security.InsertedAt = old.InsertedAt
				if err := deleteSecurityIndexes(tx, old); err != nil {
					return err
				}
			} else {
				security.InsertedAt = now
			}
			security.UpdatedAt = now

			// Store primary record
			if err := tx.Set(key, storage.MarshalSecurity(security)); err != nil {
				return err
			}

			// Store symbol and name indexes
			idValue := storage.MarshalID(security.Id)
			if err := tx.Set(makeIndexKey(securitySymbolPrefix, security.Symbol, security.Id), idValue); err != nil {
				return err
			}
			if err := tx.Set(makeIndexKey(securityNamePrefix, security.Name, security.Id), idValue); err != nil {
				return err
			}
		}
		return commit(tx)
	}, true)

	return securities, err
}

// DeleteSecurities removes securities by their IDs.
func (r *CatalogRepository) DeleteSecurities(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSecurityKey(id)

			// Read security to get indexed values for cleanup
			security, err := readSecurity(tx, key)
			if err != nil {
				return err
			}
			if security == nil {
				return storage.ErrNotFound
			}

			if err := deleteSecurityIndexes(tx, security); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return commit(tx)
	}, true)
}

// GetSecurity retrieves a single security by ID.
func (r *CatalogRepository) GetSecurity(ctx context.Context, id core.ID) (*core.Security, error) {
	var result *core.Security
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSecurity(tx, makeSecurityKey(id))
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

// GetSecurities retrieves multiple securities by their IDs.
func (r *CatalogRepository) GetSecurities(ctx context.Context, ids ...core.ID) ([]*core.Security, error) {
	var result []*core.Security
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			security, err := readSecurity(tx, makeSecurityKey(id))
			if err != nil {
				return err
			}
			if security != nil {
				result = append(result, security)
			}
		}
		return nil
	}, false)
	return result, err
}

// CountSecurities returns the number of securities in the catalog.
func (r *CatalogRepository) CountSecurities(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanIndex(ctx, tx, securitySymbolPrefix, func(_ string, _ core.ID) (bool, error) {
			count++
			return false, nil
		})
	}, false)
	return count, err
}

// ListSecurities pages through the primary records in key order.
func (r *CatalogRepository) ListSecurities(ctx context.Context, after core.ID, limit int) ([]*core.Security, error) {
	if limit <= 0 {
		return []*core.Security{}, nil
	}

	results := make([]*core.Security, 0, limit)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(securityRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Rewind()
		var cursor []byte
		if after != 0 {
			cursor = makeSecurityKey(after)
			iter.Seek(cursor)
		}

		for ; iter.Valid() && len(results) < limit; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			if cursor != nil && bytes.Equal(item.Key(), cursor) {
				continue
			}
			err := item.Value(func(val []byte) error {
				security, err := storage.UnmarshalSecurity(val)
				if err != nil {
					return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
				}
				results = append(results, security)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ExactMatch returns rows whose symbol or name equals query, case-insensitively.
// Both indexes are seeked directly; the union is sorted into catalog order.
func (r *CatalogRepository) ExactMatch(ctx context.Context, query string, limit int) ([]*core.Security, error) {
	q := core.Normalize(query)
	if q == "" || limit <= 0 {
		return []*core.Security{}, nil
	}

	results := make([]*core.Security, 0, limit)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		seen := make(map[core.ID]bool)
		for _, prefix := range []string{securitySymbolPrefix, securityNamePrefix} {
			ids, err := seekIndex(ctx, tx, prefix, q)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if seen[id] {
					continue
				}
				seen[id] = true
				security, err := readSecurity(tx, makeSecurityKey(id))
				if err != nil {
					return err
				}
				if security != nil {
					results = append(results, security)
				}
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, core.CompareBySymbol)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// PartialMatch returns rows whose symbol or name contains query, case-insensitively.
// Candidates are decided from index keys; only matching rows are loaded.
func (r *CatalogRepository) PartialMatch(ctx context.Context, query string, limit int) ([]*core.Security, error) {
	q := core.Normalize(query)
	if q == "" || limit <= 0 {
		return []*core.Security{}, nil
	}

	results := make([]*core.Security, 0, limit)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nameHits, err := collectIndexMatches(ctx, tx, securityNamePrefix, q)
		if err != nil {
			return err
		}
		return scanIndex(ctx, tx, securitySymbolPrefix, func(symbol string, id core.ID) (bool, error) {
			if !strings.Contains(symbol, q) && !nameHits[id] {
				return false, nil
			}
			security, err := readSecurity(tx, makeSecurityKey(id))
			if err != nil {
				return false, err
			}
			if security != nil {
				results = append(results, security)
			}
			return len(results) >= limit, nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FilteredMatch returns rows satisfying every predicate of filter.
// Symbol and name predicates are checked against the index keys before a
// row is loaded; the remaining predicates need the record.
func (r *CatalogRepository) FilteredMatch(ctx context.Context, filter storage.Filter, limit int) ([]*core.Security, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*core.Security{}, nil
	}

	results := make([]*core.Security, 0, limit)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var symbolParams []string
		var nameHits []map[core.ID]bool
		for _, p := range filter.Predicates {
			switch p.Field {
			case core.FieldSymbol:
				symbolParams = append(symbolParams, filter.Param(p))
			case core.FieldName:
				hits, err := collectIndexMatches(ctx, tx, securityNamePrefix, filter.Param(p))
				if err != nil {
					return err
				}
				nameHits = append(nameHits, hits)
			}
		}

		return scanIndex(ctx, tx, securitySymbolPrefix, func(symbol string, id core.ID) (bool, error) {
			for _, param := range symbolParams {
				if !strings.Contains(symbol, param) {
					return false, nil
				}
			}
			for _, hits := range nameHits {
				if !hits[id] {
					return false, nil
				}
			}
			security, err := readSecurity(tx, makeSecurityKey(id))
			if err != nil {
				return false, err
			}
			if security != nil && filter.Matches(security) {
				results = append(results, security)
			}
			return len(results) >= limit, nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Helper methods

// scanIndex walks a text index in key order, calling fn with the normalized
// text and ID of each entry until fn asks to stop. Only keys are read.
func scanIndex(ctx context.Context, tx *badger.Txn, index string, fn func(text string, id core.ID) (stop bool, err error)) error {
	prefix := makeIndexPrefix(index)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	visited := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		if visited%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		visited++

		text, id, ok := parseIndexKey(prefix, iter.Item().Key())
		if !ok {
			continue
		}
		stop, err := fn(text, id)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// collectIndexMatches returns the IDs of every entry of index whose
// normalized text contains q.
func collectIndexMatches(ctx context.Context, tx *badger.Txn, index, q string) (map[core.ID]bool, error) {
	hits := make(map[core.ID]bool)
	err := scanIndex(ctx, tx, index, func(text string, id core.ID) (bool, error) {
		if strings.Contains(text, q) {
			hits[id] = true
		}
		return false, nil
	})
	return hits, err
}

// seekIndex returns the IDs of every entry whose indexed text equals text.
func seekIndex(ctx context.Context, tx *badger.Txn, prefix, text string) ([]core.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seekKey := makePartialIndexKey(prefix, text)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = seekKey
	iter := tx.NewIterator(opts)
	defer iter.Close()

	indexPrefix := makeIndexPrefix(prefix)
	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		_, id, ok := parseIndexKey(indexPrefix, iter.Item().Key())
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// deleteSecurityIndexes removes the symbol and name index entries of a security.
func deleteSecurityIndexes(tx *badger.Txn, security *core.Security) error {
	if err := tx.Delete(makeIndexKey(securitySymbolPrefix, security.Symbol, security.Id)); err != nil {
		return err
	}
	return tx.Delete(makeIndexKey(securityNamePrefix, security.Name, security.Id))
}

// readSecurity reads a security from the transaction.
func readSecurity(tx *badger.Txn, key []byte) (*core.Security, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var security *core.Security
	err = item.Value(func(val []byte) error {
		var err error
		security, err = storage.UnmarshalSecurity(val)
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		return nil
	})
	return security, err
}
