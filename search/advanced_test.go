package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/tickerdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilder_Build(t *testing.T) {
	builder, err := NewQueryBuilder(&stubCatalog{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		criteria core.Criteria
		shape    string
		params   []string
	}{
		{
			name:     "single field",
			criteria: core.Criteria{Exchange: "NASDAQ"},
			shape:    "exchange CONTAINS $1",
			params:   []string{"nasdaq"},
		},
		{
			name:     "all fields in fixed order",
			criteria: core.Criteria{Currency: "usd", Country: "US", Exchange: "nyse", CompanyName: "Inc", Symbol: "a"},
			shape:    "symbol CONTAINS $1 AND name CONTAINS $2 AND exchange CONTAINS $3 AND country CONTAINS $4 AND currency CONTAINS $5",
			params:   []string{"a", "inc", "nyse", "us", "usd"},
		},
		{
			name:     "blank fields are skipped",
			criteria: core.Criteria{Symbol: "  ", CompanyName: "apple", Country: "\t"},
			shape:    "name CONTAINS $1",
			params:   []string{"apple"},
		},
		{
			name:     "values are trimmed",
			criteria: core.Criteria{Symbol: " MS ", Currency: " Usd"},
			shape:    "symbol CONTAINS $1 AND currency CONTAINS $2",
			params:   []string{"ms", "usd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := builder.Build(tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, filter.Shape())
			assert.Equal(t, tt.params, filter.Params)

			// Building again gives the same filter
			again, err := builder.Build(tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, filter, again)
		})
	}
}

func TestQueryBuilder_BlankCriteria(t *testing.T) {
	stub := &stubCatalog{}
	builder, err := NewQueryBuilder(stub)
	require.NoError(t, err)

	for _, criteria := range []core.Criteria{
		{},
		{Symbol: " ", CompanyName: "\t", Exchange: "", Country: "  ", Currency: "\n"},
	} {
		filter, err := builder.Build(criteria)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrNoCriteria)
		assert.True(t, filter.IsEmpty())

		results, err := builder.Search(context.Background(), criteria, 10)
		assert.Nil(t, results)
		assert.ErrorIs(t, err, ErrNoCriteria)
	}

	assert.Equal(t, 0, stub.calls(), "catalog must not be queried")
}

func TestQueryBuilder_LimitClamped(t *testing.T) {
	stub := &stubCatalog{}
	builder, err := NewQueryBuilder(stub)
	require.NoError(t, err)

	for _, limit := range []int{-5, 0, 1, 100, 101, 10000} {
		_, err := builder.Search(context.Background(), core.Criteria{Symbol: "a"}, limit)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{1, 1, 1, 100, 100, 100}, stub.filteredLimits)
}

func TestQueryBuilder_TruncatesOverReturn(t *testing.T) {
	stub := &stubCatalog{
		filtered: []*core.Security{sec(1, "A", "a"), sec(2, "B", "b"), sec(3, "C", "c")},
	}
	builder, err := NewQueryBuilder(stub)
	require.NoError(t, err)

	results, err := builder.Search(context.Background(), core.Criteria{Symbol: "a"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, symbols(results))
}

func TestQueryBuilder_RetrievalError(t *testing.T) {
	boom := errors.New("timeout")
	builder, err := NewQueryBuilder(&stubCatalog{filteredErr: boom})
	require.NoError(t, err)

	results, err := builder.Search(context.Background(), core.Criteria{Exchange: "LSE"}, 10)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.ErrorIs(t, err, boom)
}

func TestQueryBuilder_ExchangeOnly(t *testing.T) {
	rows := generatedCatalog()
	catalog := newCatalog(t, rows...)
	builder, err := NewQueryBuilder(catalog)
	require.NoError(t, err)

	results, err := builder.Search(context.Background(), core.Criteria{Exchange: "NASDAQ"}, MaxAdvancedLimit)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.Contains(t, strings.ToLower(r.Exchange), "nasdaq")
	}
	assert.IsNonDecreasing(t, normalizedSymbols(results))

	// Exactly the NASDAQ rows, regardless of symbol or name
	want := make(map[core.ID]bool)
	for _, s := range rows {
		if strings.Contains(strings.ToLower(s.Exchange), "nasdaq") {
			want[s.Id] = true
		}
	}
	got := make(map[core.ID]bool)
	for _, r := range results {
		got[r.Id] = true
	}
	assert.Equal(t, want, got)
	assert.Len(t, results, len(got))
}

func TestQueryBuilder_OmittingCriterionNeverNarrows(t *testing.T) {
	catalog := newCatalog(t, generatedCatalog()...)
	builder, err := NewQueryBuilder(catalog)
	require.NoError(t, err)
	ctx := context.Background()

	narrow, err := builder.Search(ctx, core.Criteria{Exchange: "lse", Currency: "gbp", CompanyName: "holdings"}, MaxAdvancedLimit)
	require.NoError(t, err)
	wide, err := builder.Search(ctx, core.Criteria{Exchange: "lse", CompanyName: "holdings"}, MaxAdvancedLimit)
	require.NoError(t, err)

	wideIDs := make(map[core.ID]bool)
	for _, r := range wide {
		wideIDs[r.Id] = true
	}
	for _, r := range narrow {
		assert.True(t, wideIDs[r.Id])
	}
	assert.GreaterOrEqual(t, len(wide), len(narrow))
}
