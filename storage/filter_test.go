package storage

import (
	"errors"
	"testing"

	"github.com/poiesic/tickerdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Shape(t *testing.T) {
	f := Filter{}.
		Add(core.FieldSymbol, "AA").
		Add(core.FieldExchange, " NASDAQ ")

	assert.Equal(t, "symbol CONTAINS $1 AND exchange CONTAINS $2", f.Shape())
	assert.Equal(t, []string{"aa", "nasdaq"}, f.Params)
	assert.Equal(t, `symbol CONTAINS "aa" AND exchange CONTAINS "nasdaq"`, f.String())
}

func TestFilter_AddDoesNotAlias(t *testing.T) {
	base := Filter{}.Add(core.FieldSymbol, "A")
	left := base.Add(core.FieldCountry, "US")
	right := base.Add(core.FieldCurrency, "EUR")

	assert.Equal(t, "symbol CONTAINS $1 AND country CONTAINS $2", left.Shape())
	assert.Equal(t, "symbol CONTAINS $1 AND currency CONTAINS $2", right.Shape())
	assert.Equal(t, "us", left.Params[1])
	assert.Equal(t, "eur", right.Params[1])
}

func TestFilter_Matches(t *testing.T) {
	apple := &core.Security{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Country: "US", Currency: "USD"}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"single predicate", Filter{}.Add(core.FieldExchange, "nasdaq"), true},
		{"case-insensitive substring", Filter{}.Add(core.FieldName, "APPLE"), true},
		{"all predicates hold", Filter{}.Add(core.FieldSymbol, "aa").Add(core.FieldCurrency, "us"), true},
		{"one predicate fails", Filter{}.Add(core.FieldSymbol, "aa").Add(core.FieldCountry, "de"), false},
		{"empty filter matches everything", Filter{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(apple))
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	err := Filter{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuery))

	err = Filter{}.Add(core.FieldSymbol, "   ").Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuery))

	assert.NoError(t, Filter{}.Add(core.FieldSymbol, "A").Validate())
}
