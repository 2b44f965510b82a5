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

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

const (
	// DefaultBatchSize is the default number of securities to fetch in each batch
	DefaultBatchSize = 500
)

// SecurityIterator iterates over every stored security in batches.
type SecurityIterator struct {
	repo      storage.CatalogRepository
	batchSize int
}

// NewSecurityIterator creates a new security iterator.
// batchSize: number of securities to fetch in each batch (must be > 0)
func NewSecurityIterator(repo storage.CatalogRepository, batchSize int) *SecurityIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &SecurityIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach pages through the catalog, calling fn for each batch.
// Iteration stops on first error from fn or when all securities are processed.
// Context cancellation is checked between batches.
func (it *SecurityIterator) ForEach(ctx context.Context, fn func([]*core.Security) error) error {
	var after core.ID
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := it.repo.ListSecurities(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		// Taken before fn runs, which may rewrite the batch.
		after = batch[len(batch)-1].Id

		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < it.batchSize {
			return nil
		}
	}
}
