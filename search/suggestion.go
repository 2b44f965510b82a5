package search

import (
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/match"
)

// Suggestion is a search result together with the strategies that explain it.
type Suggestion struct {
	Security *core.Security
	// Strategy is the most relevant strategy the security satisfies.
	// It is the zero Strategy when none applies, e.g. a criteria search
	// on exchange only.
	Strategy match.Strategy
	// MatchedBy lists every satisfied strategy, most relevant first.
	MatchedBy []match.Strategy
}

// Assemble explains the results of a text search. Order is preserved.
func Assemble(results *ResultSet, query string, registry *match.Registry) []Suggestion {
	if results == nil {
		return []Suggestion{}
	}
	if registry == nil {
		registry = match.Default()
	}

	suggestions := make([]Suggestion, 0, results.Len())
	for _, security := range results.Securities {
		suggestion := Suggestion{Security: security}
		for _, strategy := range registry.All() {
			if strategy.Test(security, query) {
				suggestion.MatchedBy = append(suggestion.MatchedBy, strategy)
			}
		}
		if len(suggestion.MatchedBy) > 0 {
			suggestion.Strategy = suggestion.MatchedBy[0]
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}

// AssembleCriteria explains the results of a criteria search. Order is preserved.
func AssembleCriteria(results *ResultSet, criteria core.Criteria, registry *match.Registry) []Suggestion {
	if results == nil {
		return []Suggestion{}
	}
	if registry == nil {
		registry = match.Default()
	}

	suggestions := make([]Suggestion, 0, results.Len())
	for _, security := range results.Securities {
		suggestion := Suggestion{
			Security:  security,
			MatchedBy: registry.Explain(security, criteria),
		}
		if len(suggestion.MatchedBy) > 0 {
			suggestion.Strategy = suggestion.MatchedBy[0]
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}
