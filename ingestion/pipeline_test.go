package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
	"github.com/poiesic/tickerdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sec(symbol, name string) *core.Security {
	return &core.Security{Symbol: symbol, Name: name, Exchange: "NYSE", Country: "US", Currency: "USD", Type: "Common Stock"}
}

type testRepos struct {
	catalog     storage.CatalogRepository
	references  storage.ReferenceRepository
	checkpoints storage.CheckpointRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	catalog, references, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		references.Close()
		catalog.Close()
		backend.Close()
	})
	return testRepos{
		catalog:     catalog,
		references:  references,
		checkpoints: badger.NewCheckpointRepository(backend),
	}
}

// failingCatalog fails every AddSecurities call whose batch contains failSymbol.
type failingCatalog struct {
	storage.CatalogRepository
	failSymbol string
	calls      atomic.Int32
}

func (c *failingCatalog) AddSecurities(ctx context.Context, securities ...*core.Security) ([]*core.Security, error) {
	c.calls.Add(1)
	for _, s := range securities {
		if s.Symbol == c.failSymbol {
			return nil, errors.New("disk full")
		}
	}
	return c.CatalogRepository.AddSecurities(ctx, securities...)
}

// flakyCatalog fails the first n AddSecurities calls with errTransient.
type flakyCatalog struct {
	storage.CatalogRepository
	failures atomic.Int32
}

var errTransient = errors.New("transaction conflict")

func (c *flakyCatalog) AddSecurities(ctx context.Context, securities ...*core.Security) ([]*core.Security, error) {
	if c.failures.Add(-1) >= 0 {
		return nil, errTransient
	}
	return c.CatalogRepository.AddSecurities(ctx, securities...)
}

func TestNewPipeline(t *testing.T) {
	repos := newTestRepos(t)

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(repos.catalog)
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, DefaultBatchSize, p.batchSize)
		assert.Equal(t, DefaultMaxRetries, p.maxRetries)
	})

	t.Run("with options", func(t *testing.T) {
		p, err := NewPipeline(repos.catalog,
			WithPoolSize(2),
			WithBatchSize(7),
			WithRetry(5, time.Millisecond, badger.IsRetryable),
			WithLogger(slog.Default()),
			WithReferences(repos.references),
			WithCheckpoints(repos.checkpoints),
		)
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, 2, p.pool.Cap())
		assert.Equal(t, 7, p.batchSize)
		assert.Equal(t, 5, p.maxRetries)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		p, err := NewPipeline(repos.catalog, WithLogger(nil))
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p.logger)
	})

	t.Run("nil catalog", func(t *testing.T) {
		_, err := NewPipeline(nil)
		assert.Equal(t, ErrCatalogRequired, err)
	})

	t.Run("invalid retry", func(t *testing.T) {
		_, err := NewPipeline(repos.catalog, WithRetry(0, time.Millisecond, nil))
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewPipeline(repos.catalog, WithBatchSize(0))
		assert.Error(t, err)
	})
}

func TestPipeline_RunRequiresSource(t *testing.T) {
	repos := newTestRepos(t)
	p, err := NewPipeline(repos.catalog)
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Run(context.Background(), nil, nil)
	assert.Equal(t, ErrSourceRequired, err)
}

func TestPipeline_Run(t *testing.T) {
	repos := newTestRepos(t)
	var progress bytes.Buffer
	p, err := NewPipeline(repos.catalog,
		WithPoolSize(3),
		WithBatchSize(4),
		WithReferences(repos.references),
		WithCheckpoints(repos.checkpoints),
		WithProgress(&progress, 5),
	)
	require.NoError(t, err)
	defer p.Release()

	var securities []*core.Security
	for i := 0; i < 22; i++ {
		securities = append(securities, sec(fmt.Sprintf("T%02d", i), fmt.Sprintf("Test Company %d", i)))
	}
	securities[3].Symbol = ""
	securities[10].Name = "  "
	securities[21].Symbol = " "
	securities[5].Exchange = "LSE"
	securities[5].Country = "gb"
	securities[5].Currency = "GBP"

	ctx := context.Background()
	report, err := p.Run(ctx, NewSliceSource("fixture", securities...), &RunOptions{Total: 22})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "fixture", report.Source)
	assert.Equal(t, int64(22), report.Rows)
	assert.Equal(t, int64(19), report.Accepted)
	assert.Equal(t, int64(3), report.Rejected)
	assert.Equal(t, int64(0), report.Skipped)
	assert.Equal(t, 5, report.Batches)
	// USD, GBP, NYSE, LSE, Common Stock
	assert.Equal(t, 5, report.References)

	count, err := repos.catalog.CountSecurities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 19, count)

	lse, err := repos.references.GetReference(ctx, core.ReferenceExchange, "lse")
	require.NoError(t, err)
	assert.Equal(t, "GB", lse.Country)

	types, err := repos.references.ListReferences(ctx, core.ReferenceSecurityType)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Common Stock", types[0].Name)

	cp, err := repos.checkpoints.LoadCheckpoint(ctx, "fixture")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.True(t, cp.Completed)
	assert.Equal(t, report.RunID, cp.RunID)
	assert.Equal(t, int64(22), cp.Rows)
	assert.Equal(t, int64(19), cp.Accepted)
	assert.Equal(t, int64(3), cp.Rejected)

	assert.Contains(t, progress.String(), "22/22")
}

func TestPipeline_RunCSV(t *testing.T) {
	repos := newTestRepos(t)
	p, err := NewPipeline(repos.catalog, WithBatchSize(2))
	require.NoError(t, err)
	defer p.Release()

	input := strings.Join([]string{
		"symbol,name,exchange,currency,country",
		"AAPL,Apple Inc.,NASDAQ,USD,US",
		"MSFT,Microsoft Corporation,NASDAQ,USD,US",
		",Nameless Symbol,NYSE,USD,US",
		"VOD,Vodafone Group,LSE,GBP,GB",
	}, "\n")
	src, err := NewCSVSource("listings.csv", strings.NewReader(input))
	require.NoError(t, err)

	report, err := p.Run(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.Rows)
	assert.Equal(t, int64(3), report.Accepted)
	assert.Equal(t, int64(1), report.Rejected)
	assert.Equal(t, 0, report.References, "references are only recorded when configured")

	results, err := repos.catalog.ExactMatch(context.Background(), "vodafone group", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "VOD", results[0].Symbol)
}

func TestPipeline_ReingestUpserts(t *testing.T) {
	repos := newTestRepos(t)
	p, err := NewPipeline(repos.catalog, WithBatchSize(10))
	require.NoError(t, err)
	defer p.Release()
	ctx := context.Background()

	_, err = p.Run(ctx, NewSliceSource("a", sec("AAPL", "Apple Inc"), sec("IBM", "IBM")), nil)
	require.NoError(t, err)
	_, err = p.Run(ctx, NewSliceSource("b", sec("AAPL", "Apple Inc."), sec("IBM", "IBM")), nil)
	require.NoError(t, err)

	count, err := repos.catalog.CountSecurities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	results, err := repos.catalog.ExactMatch(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Apple Inc.", results[0].Name)
}

func TestPipeline_RetriesTransientFailures(t *testing.T) {
	repos := newTestRepos(t)
	flaky := &flakyCatalog{CatalogRepository: repos.catalog}
	flaky.failures.Store(2)

	p, err := NewPipeline(flaky,
		WithPoolSize(1),
		WithRetry(3, time.Millisecond, func(err error) bool { return errors.Is(err, errTransient) }),
	)
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(context.Background(), NewSliceSource("flaky", sec("AAPL", "Apple Inc.")), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Accepted)

	count, err := repos.catalog.CountSecurities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPipeline_FailureAndResume(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	var securities []*core.Security
	for i := 0; i < 10; i++ {
		securities = append(securities, sec(fmt.Sprintf("S%d", i), fmt.Sprintf("Security %d", i)))
	}

	failing := &failingCatalog{CatalogRepository: repos.catalog, failSymbol: "S5"}
	p, err := NewPipeline(failing,
		WithPoolSize(1),
		WithBatchSize(2),
		WithRetry(2, time.Millisecond, nil),
		WithCheckpoints(repos.checkpoints),
	)
	require.NoError(t, err)

	report, err := p.Run(ctx, NewSliceSource("feed", securities...), nil)
	p.Release()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.NotNil(t, report)

	cp, err := repos.checkpoints.LoadCheckpoint(ctx, "feed")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.False(t, cp.Completed)
	assert.Equal(t, int64(4), cp.Rows, "checkpoint covers the batches before the failure")
	assert.Equal(t, int64(4), cp.Accepted)

	// Resume against a healthy catalog
	p, err = NewPipeline(repos.catalog,
		WithPoolSize(2),
		WithBatchSize(2),
		WithCheckpoints(repos.checkpoints),
	)
	require.NoError(t, err)
	defer p.Release()

	// Rebuild the source; the failed run may have stamped ids on its rows
	var fresh []*core.Security
	for i := 0; i < 10; i++ {
		fresh = append(fresh, sec(fmt.Sprintf("S%d", i), fmt.Sprintf("Security %d", i)))
	}
	report, err = p.Run(ctx, NewSliceSource("feed", fresh...), &RunOptions{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, int64(10), report.Rows)
	assert.Equal(t, int64(4), report.Skipped)
	assert.Equal(t, int64(6), report.Accepted)

	count, err := repos.catalog.CountSecurities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	cp, err = repos.checkpoints.LoadCheckpoint(ctx, "feed")
	require.NoError(t, err)
	assert.True(t, cp.Completed)
	assert.Equal(t, int64(10), cp.Rows)
	assert.Equal(t, int64(10), cp.Accepted)
	assert.Equal(t, report.RunID, cp.RunID)
}

func TestPipeline_ResumeWithoutCheckpoint(t *testing.T) {
	repos := newTestRepos(t)
	p, err := NewPipeline(repos.catalog, WithCheckpoints(repos.checkpoints))
	require.NoError(t, err)
	defer p.Release()

	report, err := p.Run(context.Background(), NewSliceSource("new", sec("A", "Alpha")), &RunOptions{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Skipped)
	assert.Equal(t, int64(1), report.Accepted)
}

func TestPipeline_CancelledContext(t *testing.T) {
	repos := newTestRepos(t)
	p, err := NewPipeline(repos.catalog)
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Run(ctx, NewSliceSource("x", sec("A", "Alpha")), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeriveReferences(t *testing.T) {
	securities := []*core.Security{
		{Symbol: "A", Name: "A", Currency: "usd", Exchange: "NYSE", Country: "us", Type: "ETF"},
		{Symbol: "B", Name: "B", Currency: "USD", Exchange: "nyse", Country: "CA", Type: ""},
		{Symbol: "C", Name: "C", Currency: " ", Exchange: "TSX", Country: "CA"},
	}

	entries := DeriveReferences(securities)
	got := make(map[string]*core.ReferenceEntry)
	for _, e := range entries {
		got[e.Kind.String()+":"+e.Code] = e
	}

	assert.Len(t, entries, 4)
	require.Contains(t, got, "currency:USD")
	require.Contains(t, got, "exchange:NYSE")
	require.Contains(t, got, "exchange:TSX")
	require.Contains(t, got, "security-type:ETF")
	assert.Equal(t, "US", got["exchange:NYSE"].Country, "first listing wins")
	assert.Equal(t, "CA", got["exchange:TSX"].Country)
}
