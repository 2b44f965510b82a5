package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/tickerdex/core"
)

// Row is one data row read from a source.
type Row struct {
	// Line is the 1-based position of the row among the data rows,
	// not counting the header.
	Line     int64
	Security *core.Security
}

// Source yields rows in a stable order. Next returns io.EOF after the last row.
type Source interface {
	Name() string
	Next() (Row, error)
}

// column is a Security attribute a CSV column can populate.
type column int

const (
	colSymbol column = iota
	colName
	colCurrency
	colExchange
	colCountry
	colType
	colFIGI
	colCFI
	colISIN
	colCUSIP
	numColumns
)

// headerAliases maps lower-cased header names to columns.
var headerAliases = map[string]column{
	"symbol":        colSymbol,
	"ticker":        colSymbol,
	"name":          colName,
	"description":   colName,
	"company":       colName,
	"company_name":  colName,
	"currency":      colCurrency,
	"exchange":      colExchange,
	"mic":           colExchange,
	"country":       colCountry,
	"type":          colType,
	"security_type": colType,
	"figi":          colFIGI,
	"cfi":           colCFI,
	"isin":          colISIN,
	"cusip":         colCUSIP,
}

// CSVSource reads securities from CSV with a header row. Column order is
// free; columns are matched by header name, case-insensitively. Symbol and
// name columns are required, the rest are optional.
type CSVSource struct {
	name    string
	reader  *csv.Reader
	columns [numColumns]int
	line    int64
}

var _ Source = (*CSVSource)(nil)

// NewCSVSource reads the header from r and prepares to stream rows.
// name identifies the source in checkpoints and logs.
func NewCSVSource(name string, r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	s := &CSVSource{name: name, reader: reader}
	for i := range s.columns {
		s.columns[i] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := headerAliases[key]; ok && s.columns[col] < 0 {
			s.columns[col] = i
		}
	}

	if s.columns[colSymbol] < 0 {
		return nil, fmt.Errorf("%w: symbol", ErrMissingColumn)
	}
	if s.columns[colName] < 0 {
		return nil, fmt.Errorf("%w: name", ErrMissingColumn)
	}
	return s, nil
}

// Name returns the source name.
func (s *CSVSource) Name() string {
	return s.name
}

// Next returns the next data row.
func (s *CSVSource) Next() (Row, error) {
	record, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		return Row{}, fmt.Errorf("%s: %w", s.name, err)
	}
	s.line++

	cell := func(c column) string {
		i := s.columns[c]
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	return Row{
		Line: s.line,
		Security: &core.Security{
			Symbol:   cell(colSymbol),
			Name:     cell(colName),
			Currency: strings.ToUpper(cell(colCurrency)),
			Exchange: cell(colExchange),
			Country:  strings.ToUpper(cell(colCountry)),
			Type:     cell(colType),
			FIGI:     cell(colFIGI),
			CFI:      cell(colCFI),
			ISIN:     cell(colISIN),
			CUSIP:    cell(colCUSIP),
		},
	}, nil
}

// SliceSource serves rows from memory, mostly for seeding and tests.
type SliceSource struct {
	name       string
	securities []*core.Security
	next       int
}

var _ Source = (*SliceSource)(nil)

// NewSliceSource creates a source over securities.
func NewSliceSource(name string, securities ...*core.Security) *SliceSource {
	return &SliceSource{name: name, securities: securities}
}

// Name returns the source name.
func (s *SliceSource) Name() string {
	return s.name
}

// Next returns the next row.
func (s *SliceSource) Next() (Row, error) {
	if s.next >= len(s.securities) {
		return Row{}, io.EOF
	}
	sec := s.securities[s.next]
	s.next++
	return Row{Line: int64(s.next), Security: sec}, nil
}
