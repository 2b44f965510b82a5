package storage

import (
	"fmt"
	"strings"

	"github.com/poiesic/tickerdex/core"
)

// Predicate is a case-insensitive "contains" test of one column against a
// positional parameter.
type Predicate struct {
	Field    core.Field
	Position int // 1-based index into Filter.Params
}

// Filter is a compiled conjunction of predicates with positional parameters.
// Predicates are kept in the order they were added, so the same sequence of
// Add calls always compiles to the same Shape.
type Filter struct {
	Predicates []Predicate
	Params     []string // Normalized parameter values
}

// Add appends a contains predicate for field and returns the extended filter.
func (f Filter) Add(field core.Field, value string) Filter {
	f.Params = append(f.Params[:len(f.Params):len(f.Params)], core.Normalize(value))
	f.Predicates = append(f.Predicates[:len(f.Predicates):len(f.Predicates)], Predicate{
		Field:    field,
		Position: len(f.Params),
	})
	return f
}

// IsEmpty reports whether the filter has no predicates.
func (f Filter) IsEmpty() bool {
	return len(f.Predicates) == 0
}

// Param returns the parameter bound to a predicate.
func (f Filter) Param(p Predicate) string {
	if p.Position < 1 || p.Position > len(f.Params) {
		return ""
	}
	return f.Params[p.Position-1]
}

// Shape renders the filter without its parameter values,
// e.g. "symbol CONTAINS $1 AND exchange CONTAINS $2".
func (f Filter) Shape() string {
	parts := make([]string, len(f.Predicates))
	for i, p := range f.Predicates {
		parts[i] = fmt.Sprintf("%s CONTAINS $%d", p.Field, p.Position)
	}
	return strings.Join(parts, " AND ")
}

// String renders the filter with its parameter values.
func (f Filter) String() string {
	parts := make([]string, len(f.Predicates))
	for i, p := range f.Predicates {
		parts[i] = fmt.Sprintf("%s CONTAINS %q", p.Field, f.Param(p))
	}
	return strings.Join(parts, " AND ")
}

// Validate checks that every predicate has a bound, non-empty parameter.
func (f Filter) Validate() error {
	if f.IsEmpty() {
		return fmt.Errorf("%w: filter has no predicates", ErrInvalidQuery)
	}
	for _, p := range f.Predicates {
		if f.Param(p) == "" {
			return fmt.Errorf("%w: predicate on %s has no parameter", ErrInvalidQuery, p.Field)
		}
	}
	return nil
}

// Matches reports whether security satisfies every predicate.
func (f Filter) Matches(security *core.Security) bool {
	for _, p := range f.Predicates {
		if !strings.Contains(core.Normalize(security.Value(p.Field)), f.Param(p)) {
			return false
		}
	}
	return true
}
