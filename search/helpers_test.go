package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
	"github.com/poiesic/tickerdex/storage/badger"
	"github.com/stretchr/testify/require"
)

// newCatalog returns an in-memory catalog holding securities.
func newCatalog(t *testing.T, securities ...*core.Security) storage.CatalogRepository {
	t.Helper()
	catalog, refs, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		refs.Close()
		catalog.Close()
		backend.Close()
	})
	if len(securities) > 0 {
		_, err = catalog.AddSecurities(context.Background(), securities...)
		require.NoError(t, err)
	}
	return catalog
}

func symbols(securities []*core.Security) []string {
	out := make([]string, len(securities))
	for i, s := range securities {
		out[i] = s.Symbol
	}
	return out
}

// stubCatalog returns canned rows, ignoring limits, and records every call.
type stubCatalog struct {
	exact, partial, filtered          []*core.Security
	exactErr, partialErr, filteredErr error

	exactLimits, partialLimits, filteredLimits []int
	filters                                    []storage.Filter
}

var _ storage.CatalogReader = (*stubCatalog)(nil)

func (c *stubCatalog) ExactMatch(_ context.Context, _ string, limit int) ([]*core.Security, error) {
	c.exactLimits = append(c.exactLimits, limit)
	return c.exact, c.exactErr
}

func (c *stubCatalog) PartialMatch(_ context.Context, _ string, limit int) ([]*core.Security, error) {
	c.partialLimits = append(c.partialLimits, limit)
	return c.partial, c.partialErr
}

func (c *stubCatalog) FilteredMatch(_ context.Context, filter storage.Filter, limit int) ([]*core.Security, error) {
	c.filteredLimits = append(c.filteredLimits, limit)
	c.filters = append(c.filters, filter)
	return c.filtered, c.filteredErr
}

func (c *stubCatalog) calls() int {
	return len(c.exactLimits) + len(c.partialLimits) + len(c.filteredLimits)
}

func sec(id core.ID, symbol, name string) *core.Security {
	return &core.Security{Id: id, Symbol: symbol, Name: name}
}

// generatedCatalog builds a catalog where many rows share fragments so that
// queries hit both phases.
func generatedCatalog() []*core.Security {
	exchanges := []string{"NASDAQ", "NYSE", "LSE", "XETRA"}
	countries := []string{"US", "US", "GB", "DE"}
	currencies := []string{"USD", "USD", "GBP", "EUR"}
	stems := []string{"AB", "ABC", "BAB", "CAB", "XAB", "ZZ"}

	var out []*core.Security
	for i := 0; i < 120; i++ {
		stem := stems[i%len(stems)]
		venue := i % len(exchanges)
		out = append(out, &core.Security{
			Symbol:   fmt.Sprintf("%s%d", stem, i%7),
			Name:     fmt.Sprintf("%s Holdings %d", stems[(i+1)%len(stems)], i),
			Exchange: exchanges[venue],
			Country:  countries[venue],
			Currency: currencies[venue],
			Type:     "Common Stock",
		})
	}
	// Exact hits on both symbol and name
	out = append(out,
		&core.Security{Symbol: "AB", Name: "Alpha Beta", Exchange: "NYSE", Country: "US", Currency: "USD"},
		&core.Security{Symbol: "QQ", Name: "ab", Exchange: "LSE", Country: "GB", Currency: "GBP"},
	)
	return out
}
