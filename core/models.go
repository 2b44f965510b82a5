package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from content so re-ingesting the same listing yields the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Normalize trims surrounding whitespace and case-folds text for comparison.
// Every match in the catalog and in the strategies goes through this function.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Field names a searchable column of a Security.
type Field int

const (
	// FieldSymbol is the ticker symbol.
	FieldSymbol Field = iota + 1
	// FieldName is the company or issue name.
	FieldName
	// FieldExchange is the listing exchange.
	FieldExchange
	// FieldCountry is the country of listing.
	FieldCountry
	// FieldCurrency is the trading currency.
	FieldCurrency
	// FieldType is the security type (common stock, ETF, ...).
	FieldType
)

// String returns the column name of the field.
func (f Field) String() string {
	switch f {
	case FieldSymbol:
		return "symbol"
	case FieldName:
		return "name"
	case FieldExchange:
		return "exchange"
	case FieldCountry:
		return "country"
	case FieldCurrency:
		return "currency"
	case FieldType:
		return "type"
	default:
		return "unknown"
	}
}

// Security is a single catalog row.
// Symbol is not unique across exchanges; Id distinguishes otherwise identical rows.
type Security struct {
	Id         ID
	Symbol     string
	Name       string
	Currency   string
	Exchange   string
	Country    string
	Type       string
	FIGI       string
	CFI        string
	ISIN       string
	CUSIP      string
	InsertedAt time.Time // When the row was first written to the catalog
	UpdatedAt  time.Time // When the row was last written
}

// ContentKey returns the tuple the surrogate ID is derived from.
func (s *Security) ContentKey() string {
	return "(" + strings.ToUpper(s.Exchange) + "," + strings.ToUpper(s.Symbol) + "," + s.FIGI + ")"
}

// Value returns the value of the given field, or "" for an unknown field.
func (s *Security) Value(f Field) string {
	switch f {
	case FieldSymbol:
		return s.Symbol
	case FieldName:
		return s.Name
	case FieldExchange:
		return s.Exchange
	case FieldCountry:
		return s.Country
	case FieldCurrency:
		return s.Currency
	case FieldType:
		return s.Type
	default:
		return ""
	}
}

// CompareBySymbol orders securities by case-folded symbol, then by ID.
// This is the catalog's stable result order.
func CompareBySymbol(a, b *Security) int {
	if c := strings.Compare(Normalize(a.Symbol), Normalize(b.Symbol)); c != 0 {
		return c
	}
	switch {
	case a.Id < b.Id:
		return -1
	case a.Id > b.Id:
		return 1
	default:
		return 0
	}
}

// Criteria holds the optional inputs of an advanced search.
// Blank fields impose no constraint.
type Criteria struct {
	Symbol      string
	CompanyName string
	Exchange    string
	Country     string
	Currency    string
}

// CriteriaFields lists the fields that have an advanced search parameter, in
// the order they are compiled into a filter.
var CriteriaFields = []Field{FieldSymbol, FieldName, FieldExchange, FieldCountry, FieldCurrency}

// Value returns the trimmed criterion for a field.
// ok is false when the field has no parameter or the parameter is blank.
func (c Criteria) Value(f Field) (value string, ok bool) {
	switch f {
	case FieldSymbol:
		value = c.Symbol
	case FieldName:
		value = c.CompanyName
	case FieldExchange:
		value = c.Exchange
	case FieldCountry:
		value = c.Country
	case FieldCurrency:
		value = c.Currency
	default:
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// IsBlank reports whether no criterion is set.
func (c Criteria) IsBlank() bool {
	for _, f := range CriteriaFields {
		if _, ok := c.Value(f); ok {
			return false
		}
	}
	return true
}

// ReferenceKind identifies a reference table.
type ReferenceKind int

const (
	// ReferenceCurrency is an ISO currency code.
	ReferenceCurrency ReferenceKind = iota + 1
	// ReferenceExchange is a listing venue.
	ReferenceExchange
	// ReferenceSecurityType is a security classification.
	ReferenceSecurityType
)

// String returns the stable name of the kind.
func (k ReferenceKind) String() string {
	switch k {
	case ReferenceCurrency:
		return "currency"
	case ReferenceExchange:
		return "exchange"
	case ReferenceSecurityType:
		return "security-type"
	default:
		return "unknown"
	}
}

// ParseReferenceKind maps a kind name back to its value.
func ParseReferenceKind(name string) (ReferenceKind, bool) {
	switch Normalize(name) {
	case "currency", "currencies":
		return ReferenceCurrency, true
	case "exchange", "exchanges":
		return ReferenceExchange, true
	case "security-type", "security-types", "type", "types":
		return ReferenceSecurityType, true
	default:
		return 0, false
	}
}

// ReferenceEntry is a row of one of the read-mostly reference tables.
type ReferenceEntry struct {
	Id        ID
	Kind      ReferenceKind
	Code      string
	Name      string
	Country   string // Only set for exchanges
	UpdatedAt time.Time
}

// ReferenceID returns the content-derived ID of a reference entry.
func ReferenceID(kind ReferenceKind, code string) ID {
	return IDFromContent(kind.String() + ":" + strings.ToUpper(strings.TrimSpace(code)))
}

// Checkpoint records ingestion progress for one source.
type Checkpoint struct {
	Source    string // Source identifier, typically the absolute file path
	RunID     string // Identifier of the run that wrote the checkpoint
	Rows      int64  // Rows committed in a contiguous prefix of the source
	Accepted  int64  // Rows written to the catalog
	Rejected  int64  // Rows dropped by validation
	Completed bool   // Whether the run reached the end of the source
	UpdatedAt time.Time
}
