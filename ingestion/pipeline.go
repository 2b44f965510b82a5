package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

const (
	// DefaultBatchSize is the default number of securities written per transaction.
	DefaultBatchSize = 500
	// DefaultMaxRetries is the default number of attempts per batch write.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the default base delay between attempts.
	DefaultRetryDelay = 200 * time.Millisecond
	// DefaultReportInterval is the default number of rows between progress reports.
	DefaultReportInterval = 1000
)

// Pipeline loads securities from a Source into the catalog.
type Pipeline struct {
	catalog        storage.CatalogRepository
	references     storage.ReferenceRepository
	checkpoints    storage.CheckpointRepository
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryDelay     time.Duration
	retryable      func(error) bool
	progress       io.Writer
	reportInterval int64
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent batch writes.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithBatchSize sets how many securities are written per transaction.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the attempt count and base backoff delay for batch writes.
// retryable selects the errors worth retrying; nil retries every error.
func WithRetry(maxAttempts int, baseDelay time.Duration, retryable func(error) bool) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryDelay = baseDelay
		p.retryable = retryable
		return nil
	}
}

// WithReferences records the currencies, exchanges and security types of
// ingested rows in repo.
func WithReferences(repo storage.ReferenceRepository) Option {
	return func(p *Pipeline) error {
		p.references = repo
		return nil
	}
}

// WithCheckpoints persists run progress in repo, enabling resume.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		p.checkpoints = repo
		return nil
	}
}

// WithProgress writes progress reports to w every interval rows.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		if interval > 0 {
			p.reportInterval = int64(interval)
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(catalog storage.CatalogRepository, opts ...Option) (*Pipeline, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		catalog:        catalog,
		pool:           pool,
		batchSize:      DefaultBatchSize,
		maxRetries:     DefaultMaxRetries,
		retryDelay:     DefaultRetryDelay,
		reportInterval: DefaultReportInterval,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// RunOptions holds optional parameters for a run.
type RunOptions struct {
	// Resume skips the rows a previous run of the same source committed.
	Resume bool
	// Total is the expected number of rows, used only for progress output.
	Total int64
}

// Report summarizes a run.
type Report struct {
	RunID      string
	Source     string
	Rows       int64 // Rows read from the source, including skipped ones
	Skipped    int64 // Rows skipped because a previous run committed them
	Accepted   int64
	Rejected   int64
	Batches    int
	References int
	Elapsed    time.Duration
}

// batch is a run of valid securities together with the last source line it covers.
type batch struct {
	seq        int
	lastLine   int64
	securities []*core.Security
	rejected   int64
}

// Run reads every row of source and writes the valid ones to the catalog.
// Rows failing validation are counted as rejected and logged. If a batch
// cannot be written the run stops, the checkpoint keeps the last contiguous
// committed line, and the error wraps ErrBatchFailed.
func (p *Pipeline) Run(ctx context.Context, source Source, opts *RunOptions) (*Report, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if opts == nil {
		opts = &RunOptions{}
	}

	report := &Report{
		RunID:  uuid.NewString(),
		Source: source.Name(),
	}
	logger := p.logger.With("source", report.Source, "run", report.RunID)
	start := time.Now()

	var skip int64
	var priorAccepted, priorRejected int64
	if opts.Resume && p.checkpoints != nil {
		cp, err := p.checkpoints.LoadCheckpoint(ctx, report.Source)
		if err != nil {
			return nil, fmt.Errorf("loading checkpoint: %w", err)
		}
		if cp != nil {
			skip = cp.Rows
			priorAccepted, priorRejected = cp.Accepted, cp.Rejected
			logger.Info("resuming ingestion", "previousRun", cp.RunID, "skip", skip, "completed", cp.Completed)
		}
	}

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, opts.Total, p.reportInterval)
		tracker.Start()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &watermark{
		pipeline: p,
		source:   report.Source,
		runID:    report.RunID,
		line:     skip,
		accepted: priorAccepted,
		rejected: priorRejected,
		done:     make(map[int]*batch),
		logger:   logger,
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	submit := func(b *batch) {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.writeBatch(runCtx, b); err != nil {
				logger.Error("batch failed", "batch", b.seq, "lastLine", b.lastLine, "err", err)
				fail(fmt.Errorf("%w: batch %d ending at line %d: %w", ErrBatchFailed, b.seq, b.lastLine, err))
				return
			}
			if tracker != nil {
				tracker.Increment(int64(len(b.securities)) + b.rejected)
			}
			w.complete(runCtx, b)
		})
		if err != nil {
			wg.Done()
			fail(err)
		}
	}

	current := &batch{}
	seq := 0
	var readErr error
	for runCtx.Err() == nil {
		row, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		report.Rows++
		if row.Line <= skip {
			report.Skipped++
			continue
		}

		current.lastLine = row.Line
		if err := core.ValidateSecurity(row.Security); err != nil {
			report.Rejected++
			current.rejected++
			logger.Debug("rejected row", "line", row.Line, "err", err)
			continue
		}
		report.Accepted++
		current.securities = append(current.securities, row.Security)

		if len(current.securities) >= p.batchSize {
			current.seq = seq
			seq++
			submit(current)
			current = &batch{}
		}
	}
	if readErr == nil && runCtx.Err() == nil && current.lastLine > 0 {
		current.seq = seq
		seq++
		submit(current)
	}

	wg.Wait()
	report.Batches = seq
	report.References = w.referenceCount()
	report.Elapsed = time.Since(start)

	if tracker != nil {
		tracker.Finish()
	}

	switch {
	case firstErr != nil:
		return report, firstErr
	case readErr != nil:
		return report, fmt.Errorf("reading %s: %w", report.Source, readErr)
	case ctx.Err() != nil:
		return report, ctx.Err()
	}

	if err := w.finish(ctx, report.Rows); err != nil {
		return report, err
	}

	logger.Info("ingestion complete",
		"rows", report.Rows,
		"accepted", report.Accepted,
		"rejected", report.Rejected,
		"skipped", report.Skipped,
		"batches", report.Batches,
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// writeBatch stores the securities of b and the reference entries they imply.
func (p *Pipeline) writeBatch(ctx context.Context, b *batch) error {
	if len(b.securities) == 0 {
		return nil
	}

	err := RetryWithBackoff(ctx, func() error {
		_, err := p.catalog.AddSecurities(ctx, b.securities...)
		return err
	}, p.maxRetries, p.retryDelay, p.retryable)
	if err != nil {
		return fmt.Errorf("failed to add securities after %d attempts: %w", p.maxRetries, err)
	}

	if p.references == nil {
		return nil
	}
	entries := DeriveReferences(b.securities)
	if len(entries) == 0 {
		return nil
	}
	err = RetryWithBackoff(ctx, func() error {
		_, err := p.references.PutReferences(ctx, entries...)
		return err
	}, p.maxRetries, p.retryDelay, p.retryable)
	if err != nil {
		return fmt.Errorf("failed to store references after %d attempts: %w", p.maxRetries, err)
	}
	return nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// DeriveReferences returns the distinct currencies, exchanges and security
// types named by securities. Blank values are ignored. An exchange takes the
// country of the first security listed on it.
func DeriveReferences(securities []*core.Security) []*core.ReferenceEntry {
	seen := make(map[string]bool)
	var entries []*core.ReferenceEntry
	add := func(kind core.ReferenceKind, value, country string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		code := strings.ToUpper(value)
		key := kind.String() + ":" + code
		if seen[key] {
			return
		}
		seen[key] = true
		entries = append(entries, &core.ReferenceEntry{
			Kind:    kind,
			Code:    code,
			Name:    value,
			Country: country,
		})
	}

	for _, s := range securities {
		add(core.ReferenceCurrency, s.Currency, "")
		add(core.ReferenceExchange, s.Exchange, strings.ToUpper(strings.TrimSpace(s.Country)))
		add(core.ReferenceSecurityType, s.Type, "")
	}
	return entries
}

// watermark tracks the highest source line below which every batch has been
// committed, and persists it as the source checkpoint.
type watermark struct {
	pipeline *Pipeline
	source   string
	runID    string
	logger   *slog.Logger

	mu         sync.Mutex
	next       int
	line       int64
	accepted   int64
	rejected   int64
	done       map[int]*batch
	references map[string]bool
}

// complete records b as committed and advances the watermark over every
// contiguous committed batch.
func (w *watermark) complete(ctx context.Context, b *batch) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.references == nil {
		w.references = make(map[string]bool)
	}
	if w.pipeline.references != nil {
		for _, e := range DeriveReferences(b.securities) {
			w.references[e.Kind.String()+":"+e.Code] = true
		}
	}

	w.done[b.seq] = b
	advanced := false
	for {
		next, ok := w.done[w.next]
		if !ok {
			break
		}
		delete(w.done, w.next)
		w.next++
		w.line = next.lastLine
		w.accepted += int64(len(next.securities))
		w.rejected += next.rejected
		advanced = true
	}
	if advanced {
		w.save(ctx, false)
	}
}

// finish marks the checkpoint complete at line rows.
func (w *watermark) finish(ctx context.Context, rows int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if rows > w.line {
		w.line = rows
	}
	return w.save(ctx, true)
}

func (w *watermark) referenceCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.references)
}

// save persists the checkpoint. Must be called with lock held.
func (w *watermark) save(ctx context.Context, completed bool) error {
	if w.pipeline.checkpoints == nil {
		return nil
	}
	err := w.pipeline.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		Source:    w.source,
		RunID:     w.runID,
		Rows:      w.line,
		Accepted:  w.accepted,
		Rejected:  w.rejected,
		Completed: completed,
	})
	if err != nil {
		w.logger.Warn("error saving checkpoint", "line", w.line, "err", err)
	}
	return err
}
