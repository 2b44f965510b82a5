package reindex

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
	"github.com/poiesic/tickerdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (storage.CatalogRepository, storage.ReferenceRepository, *badger.Backend) {
	t.Helper()
	catalog, references, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		references.Close()
		catalog.Close()
		backend.Close()
	})
	return catalog, references, backend
}

func seed(t *testing.T, catalog storage.CatalogRepository, n int) {
	t.Helper()
	securities := []*core.Security{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Currency: "USD", Country: "US", Type: "Common Stock"},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ", Currency: "USD", Country: "US", Type: "Common Stock"},
		{Symbol: "VOD", Name: "Vodafone Group", Exchange: "LSE", Currency: "GBP", Country: "GB", Type: "Common Stock"},
		{Symbol: "SAP", Name: "SAP SE", Exchange: "XETRA", Currency: "EUR", Country: "DE", Type: "Common Stock"},
		{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Exchange: "NYSE ARCA", Currency: "USD", Country: "US", Type: "ETF"},
	}
	require.LessOrEqual(t, n, len(securities))
	_, err := catalog.AddSecurities(context.Background(), securities[:n]...)
	require.NoError(t, err)
}

// dropSymbolIndex deletes every symbol index entry, leaving records orphaned.
func dropSymbolIndex(t *testing.T, backend *badger.Backend) {
	t.Helper()
	err := backend.WithTx(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("secsym:")
		iter := tx.NewIterator(opts)
		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()
		for _, k := range keys {
			if err := tx.Delete(k); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)
}

type failingCatalog struct {
	storage.CatalogRepository
	calls atomic.Int32
}

func (f *failingCatalog) AddSecurities(ctx context.Context, securities ...*core.Security) ([]*core.Security, error) {
	f.calls.Add(1)
	return nil, errors.New("disk on fire")
}

func testConfig(batchSize int) *Config {
	return &Config{
		BatchSize:      batchSize,
		ReportInterval: 1,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestSecurityIterator_BatchSizes(t *testing.T) {
	catalog, _, _ := setupTestDB(t)
	seed(t, catalog, 5)
	ctx := context.Background()

	tests := []struct {
		name          string
		batchSize     int
		expectedBatch int
	}{
		{"batch size 1", 1, 5},
		{"batch size 2", 2, 3},
		{"batch size 5", 5, 1},
		{"batch size 100", 100, 1},
		{"default batch size", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewSecurityIterator(catalog, tt.batchSize)
			batchCount := 0
			seen := make(map[core.ID]bool)

			err := iter.ForEach(ctx, func(securities []*core.Security) error {
				batchCount++
				for _, s := range securities {
					seen[s.Id] = true
				}
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBatch, batchCount, "batch count")
			assert.Len(t, seen, 5)
		})
	}
}

func TestSecurityIterator_StopsOnError(t *testing.T) {
	catalog, _, _ := setupTestDB(t)
	seed(t, catalog, 5)

	boom := errors.New("boom")
	calls := 0
	err := NewSecurityIterator(catalog, 2).ForEach(context.Background(), func([]*core.Security) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestSecurityIterator_EmptyCatalog(t *testing.T) {
	catalog, _, _ := setupTestDB(t)

	called := false
	err := NewSecurityIterator(catalog, 10).ForEach(context.Background(), func([]*core.Security) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestReindexer_Run(t *testing.T) {
	catalog, references, _ := setupTestDB(t)
	seed(t, catalog, 5)
	ctx := context.Background()

	var buf bytes.Buffer
	reindexer, err := NewReindexer(catalog, references, testConfig(2), &buf)
	require.NoError(t, err)

	report, err := reindexer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Securities)
	assert.Equal(t, 3, report.Batches)
	assert.Positive(t, report.References)

	output := buf.String()
	assert.Contains(t, output, "Starting reindex of 5")
	assert.Contains(t, output, "Rewrote 5 securities")

	currencies, err := references.ListReferences(ctx, core.ReferenceCurrency)
	require.NoError(t, err)
	var codes []string
	for _, e := range currencies {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{"EUR", "GBP", "USD"}, codes)

	exchange, err := references.GetReference(ctx, core.ReferenceExchange, "lse")
	require.NoError(t, err)
	assert.Equal(t, "GB", exchange.Country)
}

func TestReindexer_RepairsIndex(t *testing.T) {
	catalog, _, backend := setupTestDB(t)
	seed(t, catalog, 5)
	ctx := context.Background()

	dropSymbolIndex(t, backend)
	count, err := catalog.CountSecurities(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	reindexer, err := NewReindexer(catalog, nil, testConfig(2), nil)
	require.NoError(t, err)
	report, err := reindexer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Securities)
	assert.Zero(t, report.References)

	count, err = catalog.CountSecurities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	found, err := catalog.ExactMatch(ctx, "vod", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Vodafone Group", found[0].Name)
}

func TestReindexer_PreservesInsertedAt(t *testing.T) {
	catalog, _, _ := setupTestDB(t)
	seed(t, catalog, 1)
	ctx := context.Background()

	before, err := catalog.ListSecurities(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, before, 1)

	reindexer, err := NewReindexer(catalog, nil, testConfig(10), nil)
	require.NoError(t, err)
	_, err = reindexer.Run(ctx)
	require.NoError(t, err)

	after, err := catalog.GetSecurity(ctx, before[0].Id)
	require.NoError(t, err)
	assert.True(t, before[0].InsertedAt.Equal(after.InsertedAt))
}

func TestReindexer_EmptyCatalog(t *testing.T) {
	catalog, references, _ := setupTestDB(t)

	var buf bytes.Buffer
	reindexer, err := NewReindexer(catalog, references, nil, &buf)
	require.NoError(t, err)

	report, err := reindexer.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Securities)
	assert.Zero(t, report.Batches)
	assert.Contains(t, buf.String(), "0 indexed securities")
}

func TestReindexer_RetriesThenFails(t *testing.T) {
	catalog, _, _ := setupTestDB(t)
	seed(t, catalog, 2)
	failing := &failingCatalog{CatalogRepository: catalog}

	reindexer, err := NewReindexer(failing, nil, testConfig(10), nil)
	require.NoError(t, err)

	_, err = reindexer.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.EqualValues(t, 3, failing.calls.Load())
}

func TestReindexer_ContextCancellation(t *testing.T) {
	catalog, _, _ := setupTestDB(t)
	seed(t, catalog, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reindexer, err := NewReindexer(catalog, nil, testConfig(2), nil)
	require.NoError(t, err)
	_, err = reindexer.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewReindexer_RequiresCatalog(t *testing.T) {
	_, err := NewReindexer(nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrCatalogRequired)
}
