package match

import (
	"slices"

	"github.com/poiesic/tickerdex/core"
)

// Registry holds the strategies ordered by ascending priority.
type Registry struct {
	strategies []Strategy
}

var defaultRegistry = NewRegistry()

// NewRegistry returns a registry holding all six strategies.
func NewRegistry() *Registry {
	strategies := []Strategy{
		NameContains,
		SymbolContains,
		NamePrefix,
		SymbolPrefix,
		NameExact,
		SymbolExact,
	}
	slices.SortFunc(strategies, func(a, b Strategy) int {
		return a.priority - b.priority
	})
	return &Registry{strategies: strategies}
}

// Default returns the shared registry.
func Default() *Registry {
	return defaultRegistry
}

// All returns every strategy, most relevant first.
// The returned slice is a copy.
func (r *Registry) All() []Strategy {
	return slices.Clone(r.strategies)
}

// ForField returns the strategies inspecting field, most relevant first.
func (r *Registry) ForField(field core.Field) []Strategy {
	var result []Strategy
	for _, s := range r.strategies {
		if s.field == field {
			result = append(result, s)
		}
	}
	return result
}

// Classify returns the most relevant strategy that security satisfies for
// query. ok is false when nothing matches or the query is blank.
func (r *Registry) Classify(security *core.Security, query string) (strategy Strategy, ok bool) {
	q := core.Normalize(query)
	if q == "" || security == nil {
		return Strategy{}, false
	}
	for _, s := range r.strategies {
		if s.test(security, q) {
			return s, true
		}
	}
	return Strategy{}, false
}

// Explain returns every strategy satisfied by security when each strategy is
// given the criteria value for its own field, most relevant first.
// Strategies whose field has no criteria value are skipped.
func (r *Registry) Explain(security *core.Security, criteria core.Criteria) []Strategy {
	var result []Strategy
	if security == nil {
		return result
	}
	for _, s := range r.strategies {
		value, ok := criteria.Value(s.field)
		if !ok {
			continue
		}
		if s.test(security, core.Normalize(value)) {
			result = append(result, s)
		}
	}
	return result
}
