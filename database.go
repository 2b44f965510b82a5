// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tickerdex ties the security catalog, reference tables, search core
// and ingestion pipeline together behind a single Database handle.
package tickerdex

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/tickerdex/config"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/ingestion"
	"github.com/poiesic/tickerdex/reindex"
	"github.com/poiesic/tickerdex/search"
	"github.com/poiesic/tickerdex/storage"
	"github.com/poiesic/tickerdex/storage/badger"
	"github.com/poiesic/tickerdex/storage/cache"
)

// ErrDatabasePathRequired is returned when neither a path nor an in-memory
// catalog was requested.
var ErrDatabasePathRequired = errors.New("database path is required")

type Database struct {
	backend        *badger.Backend
	catalogRepo    *badger.CatalogRepository
	referenceRepo  *badger.ReferenceRepository
	referenceCache *cache.ReferenceCache
	checkpointRepo *badger.CheckpointRepository
	config         *config.Config
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	config *config.Config
	logger *slog.Logger
}

// WithConfig supplies the configuration. filePath, when non-empty, still
// takes precedence over cfg.Database.Path.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.config = cfg
		}
	}
}

// WithLogger sets the logger used by the database and the components it creates.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the catalog at filePath. Pass an empty filePath together
// with a config whose Database.InMemory is set for a throwaway catalog.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.config
	if filePath != "" {
		cfg.Database.Path = filePath
	}
	if err := cfg.Validate(); err != nil {
		if cfg.Database.Path == "" && !cfg.Database.InMemory {
			return nil, ErrDatabasePathRequired
		}
		return nil, err
	}

	backend, err := badger.OpenBackend(cfg.Database.Path, cfg.Database.InMemory)
	if err != nil {
		return nil, err
	}

	catalogRepo, err := badger.NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	referenceRepo, err := badger.NewReferenceRepository(backend)
	if err != nil {
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	referenceCache, err := cache.NewReferenceCache(referenceRepo,
		cache.WithMaxEntries(cfg.Search.ReferenceCacheSize),
		cache.WithLogger(options.logger),
	)
	if err != nil {
		referenceRepo.Close()
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:        backend,
		catalogRepo:    catalogRepo,
		referenceRepo:  referenceRepo,
		referenceCache: referenceCache,
		checkpointRepo: badger.NewCheckpointRepository(backend),
		config:         cfg,
		logger:         options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.referenceCache.Close(); err != nil {
		db.logger.Error("error closing reference cache", "err", err)
	}

	if err := db.referenceRepo.Close(); err != nil {
		db.logger.Error("error closing reference repository", "err", err)
		return err
	}
	if err := db.catalogRepo.Close(); err != nil {
		db.logger.Error("error closing catalog repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the effective, validated configuration.
func (db *Database) Config() *config.Config {
	return db.config
}

func (db *Database) CatalogRepository() storage.CatalogRepository {
	return db.catalogRepo
}

// ReferenceRepository returns the cached view of the reference tables.
func (db *Database) ReferenceRepository() storage.ReferenceRepository {
	return db.referenceCache
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpointRepo
}

// NewIngestionPipeline creates a pipeline writing to this catalog. Batch size,
// pool size, retry and progress settings come from the configuration and
// may be overridden by opts.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ing := db.config.Ingestion
	defaults := []ingestion.Option{
		ingestion.WithLogger(db.logger),
		ingestion.WithPoolSize(ing.PoolSize),
		ingestion.WithBatchSize(ing.BatchSize),
		ingestion.WithRetry(ing.MaxRetries, ing.RetryDelay, badger.IsRetryable),
		ingestion.WithReferences(db.referenceCache),
		ingestion.WithCheckpoints(db.checkpointRepo),
	}
	return ingestion.NewPipeline(db.catalogRepo, append(defaults, opts...)...)
}

// NewReindexer creates a job that rewrites every security in the catalog and
// refreshes the reference tables, reporting progress to progress.
func (db *Database) NewReindexer(progress io.Writer) (*reindex.Reindexer, error) {
	ing := db.config.Ingestion
	return reindex.NewReindexer(db.catalogRepo, db.referenceCache, &reindex.Config{
		BatchSize:      ing.BatchSize,
		ReportInterval: ing.ReportInterval,
		MaxRetries:     ing.MaxRetries,
		RetryDelay:     ing.RetryDelay,
		Retryable:      badger.IsRetryable,
	}, progress)
}

// NewSearcher creates a searcher over this catalog using the configured default limits.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	defaults := []search.Option{
		search.WithLogger(db.logger),
		search.WithDefaultLimit(db.config.Search.DefaultLimit),
		search.WithDefaultAdvancedLimit(db.config.Search.AdvancedDefaultLimit),
	}
	return search.NewSearcher(db.catalogRepo, append(defaults, opts...)...)
}

// Status summarizes the catalog contents.
type Status struct {
	Securities int            `json:"securities"`
	References map[string]int `json:"references"`
}

// Status counts securities and reference entries per kind.
func (db *Database) Status(ctx context.Context) (*Status, error) {
	count, err := db.catalogRepo.CountSecurities(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Securities: count,
		References: make(map[string]int),
	}
	for _, kind := range []core.ReferenceKind{core.ReferenceCurrency, core.ReferenceExchange, core.ReferenceSecurityType} {
		entries, err := db.referenceCache.ListReferences(ctx, kind)
		if err != nil {
			return nil, err
		}
		status.References[kind.String()] = len(entries)
	}
	return status, nil
}
