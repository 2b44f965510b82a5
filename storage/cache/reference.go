// Package cache provides read-through caches in front of storage repositories.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

// DefaultMaxEntries is the default number of reference entries kept in memory.
const DefaultMaxEntries = 4096

var (
	ErrRepositoryRequired = errors.New("reference repository required")
	ErrInvalidMaxEntries  = errors.New("max entries must be positive")
)

// ReferenceCache is a read-through cache over a storage.ReferenceRepository.
// Point lookups are served from memory; writes go to the underlying
// repository and evict the affected entries. Callers get their own copy of
// each entry, so mutating a result never changes what is cached.
type ReferenceCache struct {
	repo       storage.ReferenceRepository
	cache      *ristretto.Cache[string, *core.ReferenceEntry]
	maxEntries int64
	logger     *slog.Logger

	// mu orders cache fills against evictions. generation advances on every
	// write, and a fill started under an older generation is discarded.
	mu         sync.Mutex
	generation uint64
}

var _ storage.ReferenceRepository = (*ReferenceCache)(nil)

// Option configures a ReferenceCache.
type Option func(*ReferenceCache) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ReferenceCache) error {
		c.logger = logger
		return nil
	}
}

// WithMaxEntries bounds the number of cached entries.
func WithMaxEntries(n int) Option {
	return func(c *ReferenceCache) error {
		if n <= 0 {
			return ErrInvalidMaxEntries
		}
		c.maxEntries = int64(n)
		return nil
	}
}

// NewReferenceCache wraps repo with an in-memory cache.
func NewReferenceCache(repo storage.ReferenceRepository, opts ...Option) (*ReferenceCache, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	c := &ReferenceCache{
		repo:       repo,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "reference-cache")

	cache, err := ristretto.NewCache(&ristretto.Config[string, *core.ReferenceEntry]{
		// Ristretto recommends ten counters per entry.
		NumCounters: c.maxEntries * 10,
		MaxCost:     c.maxEntries,
		BufferItems: 64,
		// Every entry costs 1 so MaxCost counts entries.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating reference cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

func idKey(id core.ID) string {
	return fmt.Sprintf("id:%d", id)
}

func codeKey(kind core.ReferenceKind, code string) string {
	return fmt.Sprintf("code:%d:%s", kind, strings.ToUpper(strings.TrimSpace(code)))
}

// WithTransaction delegates to the underlying repository.
func (c *ReferenceCache) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.repo.WithTransaction(ctx, fn)
}

// Close stops the cache. The underlying repository is not closed.
func (c *ReferenceCache) Close() error {
	c.cache.Close()
	return nil
}

// PutReferences writes through to the repository and evicts stale entries.
func (c *ReferenceCache) PutReferences(ctx context.Context, entries ...*core.ReferenceEntry) ([]*core.ReferenceEntry, error) {
	stored, err := c.repo.PutReferences(ctx, entries...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	for _, batch := range [][]*core.ReferenceEntry{entries, stored} {
		for _, entry := range batch {
			if entry == nil {
				continue
			}
			c.cache.Del(codeKey(entry.Kind, entry.Code))
			if entry.Id != 0 {
				c.cache.Del(idKey(entry.Id))
			}
		}
	}
	return stored, err
}

// GetReference returns the entry for kind and code, consulting the cache first.
func (c *ReferenceCache) GetReference(ctx context.Context, kind core.ReferenceKind, code string) (*core.ReferenceEntry, error) {
	key := codeKey(kind, code)
	if entry, ok := c.cache.Get(key); ok {
		return clone(entry), nil
	}

	gen := c.currentGeneration()
	entry, err := c.repo.GetReference(ctx, kind, code)
	if err != nil {
		return nil, err
	}
	c.store(clone(entry), gen)
	return entry, nil
}

// GetReferenceByID returns the entry with id, consulting the cache first.
func (c *ReferenceCache) GetReferenceByID(ctx context.Context, id core.ID) (*core.ReferenceEntry, error) {
	if entry, ok := c.cache.Get(idKey(id)); ok {
		return clone(entry), nil
	}

	gen := c.currentGeneration()
	entry, err := c.repo.GetReferenceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(clone(entry), gen)
	return entry, nil
}

// ListReferences is not cached.
func (c *ReferenceCache) ListReferences(ctx context.Context, kind core.ReferenceKind) ([]*core.ReferenceEntry, error) {
	return c.repo.ListReferences(ctx, kind)
}

// Wait blocks until pending cache writes are visible to Get.
func (c *ReferenceCache) Wait() {
	c.cache.Wait()
}

func (c *ReferenceCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// store caches entry unless a write happened since gen was read, in which
// case entry may predate that write.
func (c *ReferenceCache) store(entry *core.ReferenceEntry, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding stale cache fill", "kind", entry.Kind, "code", entry.Code)
		return
	}
	if !c.cache.Set(codeKey(entry.Kind, entry.Code), entry, 1) {
		c.logger.Debug("cache write dropped", "kind", entry.Kind, "code", entry.Code)
	}
	c.cache.Set(idKey(entry.Id), entry, 1)
}

func clone(entry *core.ReferenceEntry) *core.ReferenceEntry {
	cp := *entry
	return &cp
}
