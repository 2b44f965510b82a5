package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/match"
	"github.com/poiesic/tickerdex/storage"
)

const (
	// DefaultLimit is the page size of a text search when the caller passes 0.
	DefaultLimit = 10
	// MaxTextLimit is the largest page a caller may request from SearchByText.
	MaxTextLimit = 50
	// DefaultAdvancedLimit is the page size of a criteria search when the caller passes 0.
	DefaultAdvancedLimit = 10
)

// ResultSet is an ordered page of securities with unique ids.
type ResultSet struct {
	Securities []*core.Security
	// Limit is the page size the search ran with.
	Limit int
}

// Len returns the number of securities in the set.
func (r *ResultSet) Len() int {
	return len(r.Securities)
}

// IDs returns the surrogate ids of the securities, in order.
func (r *ResultSet) IDs() []core.ID {
	ids := make([]core.ID, len(r.Securities))
	for i, s := range r.Securities {
		ids[i] = s.Id
	}
	return ids
}

// Searcher validates search requests and runs them against a catalog.
type Searcher struct {
	candidates           *CandidateSearch
	builder              *QueryBuilder
	registry             *match.Registry
	defaultLimit         int
	defaultAdvancedLimit int
	logger               *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRegistry sets the strategy registry used to explain suggestions.
// Default is match.Default().
func WithRegistry(registry *match.Registry) Option {
	return func(s *Searcher) error {
		if registry == nil {
			return ErrRegistryRequired
		}
		s.registry = registry
		return nil
	}
}

// WithDefaultLimit sets the text search page size used when the caller passes 0.
func WithDefaultLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 1 || limit > MaxTextLimit {
			return fmt.Errorf("%w: default limit %d not in [1,%d]", ErrLimitOutOfRange, limit, MaxTextLimit)
		}
		s.defaultLimit = limit
		return nil
	}
}

// WithDefaultAdvancedLimit sets the criteria search page size used when the caller passes 0.
func WithDefaultAdvancedLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 1 || limit > MaxAdvancedLimit {
			return fmt.Errorf("%w: default advanced limit %d not in [1,%d]", ErrLimitOutOfRange, limit, MaxAdvancedLimit)
		}
		s.defaultAdvancedLimit = limit
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(catalog storage.CatalogReader, opts ...Option) (*Searcher, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}

	candidates, err := NewCandidateSearch(catalog)
	if err != nil {
		return nil, err
	}
	builder, err := NewQueryBuilder(catalog)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		candidates:           candidates,
		builder:              builder,
		registry:             match.Default(),
		defaultLimit:         DefaultLimit,
		defaultAdvancedLimit: DefaultAdvancedLimit,
		logger:               slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Registry returns the strategy registry used for explanations.
func (s *Searcher) Registry() *match.Registry {
	return s.registry
}

// SearchByText runs a typeahead search.
// limit must be in [1, MaxTextLimit]; 0 selects the default.
func (s *Searcher) SearchByText(ctx context.Context, input string, limit int) (*ResultSet, error) {
	return s.SearchByTextWithMonitor(ctx, input, limit, nil)
}

// SearchByTextWithMonitor runs a typeahead search with monitoring.
// The monitor receives callbacks after each retrieval phase.
func (s *Searcher) SearchByTextWithMonitor(ctx context.Context, input string, limit int, monitor SearchMonitor) (*ResultSet, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query := strings.TrimSpace(input)
	if query == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrBlankQuery)
	}
	limit, err := resolveLimit(limit, s.defaultLimit, MaxTextLimit)
	if err != nil {
		return nil, err
	}

	monitor.Start(query)
	results, err := s.candidates.search(ctx, query, limit, monitor)
	if err != nil {
		s.logger.Error("text search failed", "query", query, "err", err)
		return nil, err
	}
	monitor.Finish(results)

	s.logger.Debug("text search", "query", query, "limit", limit, "results", len(results))
	return &ResultSet{Securities: results, Limit: limit}, nil
}

// SearchByCriteria runs an advanced search. Every non-blank criterion must
// match as a case-insensitive substring.
// limit must be in [1, MaxAdvancedLimit]; 0 selects the default.
func (s *Searcher) SearchByCriteria(ctx context.Context, criteria core.Criteria, limit int) (*ResultSet, error) {
	return s.SearchByCriteriaWithMonitor(ctx, criteria, limit, nil)
}

// SearchByCriteriaWithMonitor runs an advanced search with monitoring.
func (s *Searcher) SearchByCriteriaWithMonitor(ctx context.Context, criteria core.Criteria, limit int, monitor SearchMonitor) (*ResultSet, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if criteria.IsBlank() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrNoCriteria)
	}
	limit, err := resolveLimit(limit, s.defaultAdvancedLimit, MaxAdvancedLimit)
	if err != nil {
		return nil, err
	}

	monitor.Start(describeCriteria(criteria))
	results, err := s.builder.search(ctx, criteria, limit, monitor)
	if err != nil {
		s.logger.Error("criteria search failed", "criteria", describeCriteria(criteria), "err", err)
		return nil, err
	}
	monitor.Finish(results)

	s.logger.Debug("criteria search", "criteria", describeCriteria(criteria), "limit", limit, "results", len(results))
	return &ResultSet{Securities: results, Limit: limit}, nil
}

// Suggest runs a typeahead search and explains each result.
func (s *Searcher) Suggest(ctx context.Context, input string, limit int) ([]Suggestion, error) {
	results, err := s.SearchByText(ctx, input, limit)
	if err != nil {
		return nil, err
	}
	return Assemble(results, input, s.registry), nil
}

// SuggestByCriteria runs an advanced search and explains each result.
func (s *Searcher) SuggestByCriteria(ctx context.Context, criteria core.Criteria, limit int) ([]Suggestion, error) {
	results, err := s.SearchByCriteria(ctx, criteria, limit)
	if err != nil {
		return nil, err
	}
	return AssembleCriteria(results, criteria, s.registry), nil
}

// resolveLimit applies the default for 0 and rejects values outside [1, hi].
func resolveLimit(limit, def, hi int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 1 || limit > hi {
		return 0, fmt.Errorf("%w: %w: %d not in [1,%d]", ErrValidation, ErrLimitOutOfRange, limit, hi)
	}
	return limit, nil
}

func describeCriteria(criteria core.Criteria) string {
	parts := make([]string, 0, len(core.CriteriaFields))
	for _, field := range core.CriteriaFields {
		if value, ok := criteria.Value(field); ok {
			parts = append(parts, field.String()+"="+value)
		}
	}
	return strings.Join(parts, " ")
}
