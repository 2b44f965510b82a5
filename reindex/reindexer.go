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

package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/ingestion"
	"github.com/poiesic/tickerdex/storage"
)

// Config holds configuration for the reindex operation.
type Config struct {
	// BatchSize is the number of securities rewritten per transaction
	BatchSize int

	// ReportInterval is how often to report progress (number of securities)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each write
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Retryable selects the errors worth retrying. Nil retries every error.
	Retryable func(error) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 1000,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
	}
}

// Report summarizes a reindex run.
type Report struct {
	Securities int
	Batches    int
	References int
	Elapsed    time.Duration
}

// Reindexer orchestrates the rewrite of every security in a catalog.
type Reindexer struct {
	catalog   storage.CatalogRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *SecurityIterator
}

// NewReindexer creates a new reindexer. references may be nil, in which case
// only the catalog is rewritten.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(catalog storage.CatalogRepository, references storage.ReferenceRepository, config *Config, progress io.Writer) (*Reindexer, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		catalog:   catalog,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(catalog, references, config.MaxRetries, config.RetryDelay, config.Retryable),
		iterator:  NewSecurityIterator(catalog, config.BatchSize),
	}, nil
}

// Run rewrites every stored security. Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) (*Report, error) {
	total, err := r.catalog.CountSecurities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count securities: %w", err)
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d indexed securities (batch size: %d)\n",
		total, r.iterator.batchSize)

	// The walk reads primary records, so a damaged index may undercount total.
	tracker := ingestion.NewProgressTracker(r.progress, 0, int64(r.config.ReportInterval))
	tracker.Start()

	report := &Report{}
	err = r.iterator.ForEach(ctx, func(securities []*core.Security) error {
		refs, err := r.processor.Process(ctx, securities)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		report.Securities += len(securities)
		report.Batches++
		report.References += refs
		tracker.Increment(int64(len(securities)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	tracker.Finish()
	report.Elapsed = tracker.Elapsed()

	fmt.Fprintf(r.progress, "Reindex complete. Rewrote %d securities in %v\n",
		report.Securities, report.Elapsed.Round(time.Millisecond))
	return report, nil
}
