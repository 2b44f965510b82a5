// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package match classifies how a security matches a free-text query.
//
// There are exactly six strategies, each testing one field (symbol or name)
// with one mode (exact, prefix or contains) and carrying a fixed priority.
// Priority 1 is the most relevant; no two strategies share a priority.
//
// Strategies are immutable values and the Registry never changes after
// construction, so both may be shared freely between goroutines.
//
// Matching is case-insensitive and ignores surrounding whitespace. A query
// that is blank after trimming matches nothing.
package match

import (
	"fmt"
	"strings"

	"github.com/poiesic/tickerdex/core"
)

// Mode is how a strategy compares a field value against the query.
type Mode int

const (
	// ModeExact requires the field to equal the query.
	ModeExact Mode = iota + 1
	// ModePrefix requires the field to start with the query.
	ModePrefix
	// ModeContains requires the field to contain the query anywhere.
	ModeContains
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModePrefix:
		return "prefix"
	case ModeContains:
		return "contains"
	default:
		return "unknown"
	}
}

// Strategy is a single-field, single-mode match predicate with a fixed priority.
type Strategy struct {
	priority    int
	field       core.Field
	mode        Mode
	description string
}

// The six strategies, in priority order.
var (
	SymbolExact    = Strategy{1, core.FieldSymbol, ModeExact, "symbol equals query"}
	NameExact      = Strategy{2, core.FieldName, ModeExact, "name equals query"}
	SymbolPrefix   = Strategy{3, core.FieldSymbol, ModePrefix, "symbol starts with query"}
	NamePrefix     = Strategy{4, core.FieldName, ModePrefix, "name starts with query"}
	SymbolContains = Strategy{5, core.FieldSymbol, ModeContains, "symbol contains query"}
	NameContains   = Strategy{6, core.FieldName, ModeContains, "name contains query"}
)

// Priority returns the rank of the strategy. Lower is more relevant.
func (s Strategy) Priority() int {
	return s.priority
}

// Field returns the security field the strategy inspects.
func (s Strategy) Field() core.Field {
	return s.field
}

// Mode returns the comparison mode.
func (s Strategy) Mode() Mode {
	return s.mode
}

// Description returns a human-readable summary of the strategy.
func (s Strategy) Description() string {
	return s.description
}

// String implements fmt.Stringer, e.g. "1:symbol/exact".
func (s Strategy) String() string {
	return fmt.Sprintf("%d:%s/%s", s.priority, s.field, s.mode)
}

// IsZero reports whether s is the zero Strategy.
func (s Strategy) IsZero() bool {
	return s.priority == 0
}

// Test reports whether a single security satisfies the strategy.
func (s Strategy) Test(security *core.Security, query string) bool {
	q := core.Normalize(query)
	if q == "" || security == nil {
		return false
	}
	return s.test(security, q)
}

// Matches returns the candidates satisfying the strategy, in input order.
// The input slice is not modified.
func (s Strategy) Matches(candidates []*core.Security, query string) []*core.Security {
	results := []*core.Security{}
	q := core.Normalize(query)
	if q == "" {
		return results
	}
	for _, candidate := range candidates {
		if candidate != nil && s.test(candidate, q) {
			results = append(results, candidate)
		}
	}
	return results
}

// test compares against an already normalized, non-empty query.
func (s Strategy) test(security *core.Security, q string) bool {
	value := core.Normalize(security.Value(s.field))
	switch s.mode {
	case ModeExact:
		return value == q
	case ModePrefix:
		return strings.HasPrefix(value, q)
	case ModeContains:
		return strings.Contains(value, q)
	default:
		return false
	}
}
