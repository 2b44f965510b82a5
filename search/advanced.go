package search

import (
	"context"
	"fmt"

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

// MaxAdvancedLimit is the largest page an advanced search returns.
const MaxAdvancedLimit = 100

// QueryBuilder compiles advanced search criteria into a catalog filter.
type QueryBuilder struct {
	catalog storage.CatalogReader
}

// NewQueryBuilder creates a QueryBuilder over catalog.
func NewQueryBuilder(catalog storage.CatalogReader) (*QueryBuilder, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	return &QueryBuilder{catalog: catalog}, nil
}

// Build compiles the non-blank criteria into a conjunction of contains
// predicates. Fields are visited in core.CriteriaFields order, so identical
// criteria always compile to the same filter.
func (b *QueryBuilder) Build(criteria core.Criteria) (storage.Filter, error) {
	var filter storage.Filter
	if criteria.IsBlank() {
		return filter, fmt.Errorf("%w: %w", ErrValidation, ErrNoCriteria)
	}
	for _, field := range core.CriteriaFields {
		if value, ok := criteria.Value(field); ok {
			filter = filter.Add(field, value)
		}
	}
	return filter, nil
}

// Search returns up to limit rows satisfying every non-blank criterion.
// limit is clamped into [1, MaxAdvancedLimit]. Blank criteria fail with
// ErrValidation without touching the catalog.
func (b *QueryBuilder) Search(ctx context.Context, criteria core.Criteria, limit int) ([]*core.Security, error) {
	return b.search(ctx, criteria, limit, &noopMonitor{})
}

func (b *QueryBuilder) search(ctx context.Context, criteria core.Criteria, limit int, monitor SearchMonitor) ([]*core.Security, error) {
	filter, err := b.Build(criteria)
	if err != nil {
		return nil, err
	}
	monitor.AfterFilterBuilt(filter)

	limit = clamp(limit, 1, MaxAdvancedLimit)
	rows, err := b.catalog.FilteredMatch(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	monitor.AfterFilteredMatch(rows)

	results := NewAccumulator(limit)
	results.AddAll(rows)
	return results.Results(), nil
}
