package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

// MaxCandidates is the hard ceiling on rows a single typeahead search returns,
// whatever limit the caller asks for.
const MaxCandidates = 300

// CandidateSearch is the free-text typeahead engine.
type CandidateSearch struct {
	catalog storage.CatalogReader
}

// NewCandidateSearch creates a CandidateSearch over catalog.
func NewCandidateSearch(catalog storage.CatalogReader) (*CandidateSearch, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	return &CandidateSearch{catalog: catalog}, nil
}

// Search returns up to limit rows matching query, exact matches first.
// limit is clamped into [1, MaxCandidates]. The query is expected to be
// non-blank; a blank query yields no rows.
// If either catalog call fails the whole search fails with ErrRetrieval.
func (c *CandidateSearch) Search(ctx context.Context, query string, limit int) ([]*core.Security, error) {
	return c.search(ctx, query, limit, &noopMonitor{})
}

func (c *CandidateSearch) search(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.Security, error) {
	limit = clamp(limit, 1, MaxCandidates)
	q := strings.TrimSpace(query)
	if q == "" {
		return []*core.Security{}, nil
	}

	exact, err := c.catalog.ExactMatch(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: exact phase: %w", ErrRetrieval, err)
	}
	monitor.AfterExactPhase(exact)

	results := NewAccumulator(limit)
	results.AddAll(exact)
	if results.Full() {
		return results.Results(), nil
	}

	// Over-fetch by the exact count so rows dropped as duplicates don't
	// leave the page short.
	partial, err := c.catalog.PartialMatch(ctx, q, results.Remaining()+results.Len())
	if err != nil {
		return nil, fmt.Errorf("%w: partial phase: %w", ErrRetrieval, err)
	}
	monitor.AfterPartialPhase(partial)

	results.AddAll(partial)
	return results.Results(), nil
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
