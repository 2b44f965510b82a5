package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/ingestion"
	"github.com/poiesic/tickerdex/storage"
)

// BatchProcessor rewrites a batch of securities and records their reference data.
type BatchProcessor struct {
	catalog        storage.CatalogRepository
	references     storage.ReferenceRepository
	maxRetries     int
	retryBaseDelay time.Duration
	retryable      func(error) bool
}

// NewBatchProcessor creates a new batch processor. references may be nil.
// maxRetries: maximum number of attempts for each write
// retryBaseDelay: base delay for exponential backoff
// retryable: selects the errors worth retrying, nil retries every error
func NewBatchProcessor(catalog storage.CatalogRepository, references storage.ReferenceRepository, maxRetries int, retryBaseDelay time.Duration, retryable func(error) bool) *BatchProcessor {
	return &BatchProcessor{
		catalog:        catalog,
		references:     references,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		retryable:      retryable,
	}
}

// Process rewrites securities in one transaction and returns the number of
// reference entries written.
func (bp *BatchProcessor) Process(ctx context.Context, securities []*core.Security) (int, error) {
	if len(securities) == 0 {
		return 0, nil
	}

	err := ingestion.RetryWithBackoff(ctx, func() error {
		_, err := bp.catalog.AddSecurities(ctx, securities...)
		return err
	}, bp.maxRetries, bp.retryBaseDelay, bp.retryable)
	if err != nil {
		return 0, fmt.Errorf("failed to rewrite securities after %d attempts: %w", bp.maxRetries, err)
	}

	if bp.references == nil {
		return 0, nil
	}
	entries := ingestion.DeriveReferences(securities)
	if len(entries) == 0 {
		return 0, nil
	}
	err = ingestion.RetryWithBackoff(ctx, func() error {
		_, err := bp.references.PutReferences(ctx, entries...)
		return err
	}, bp.maxRetries, bp.retryBaseDelay, bp.retryable)
	if err != nil {
		return 0, fmt.Errorf("failed to update references: %w", err)
	}
	return len(entries), nil
}
