package dataset

import (
	"strconv"
	"strings"

	"marketcli/internal/config"
	apperrors "marketcli/internal/errors"
)

// Table is an immutable in-memory tabular dataset: named columns over rows
// of string cells, as read from a CSV source. Cleaning never mutates a
// Table; it builds a new one.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a table from a header and rows. Every row must have exactly
// one cell per column.
func New(columns []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, apperrors.NewParsingError("duplicate column name: "+name, nil)
		}
		index[name] = i
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, apperrors.NewParsingError(
				"row "+strconv.Itoa(i+1)+" has "+strconv.Itoa(len(row))+
					" cells, expected "+strconv.Itoa(len(columns)), nil)
		}
	}
	return &Table{columns: columns, index: index, rows: rows}, nil
}

// Columns returns the column names in source order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// HasColumn reports whether the named column exists. Names are matched
// case-sensitively.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns all cells of the named column in row order.
// Returns a COLUMN_NOT_FOUND error when the column is absent.
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, apperrors.NewColumnNotFoundError(name)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Row returns the cells of row i. The returned slice is shared with the
// table and must not be modified.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Cell returns the cell at row i in the named column
func (t *Table) Cell(i int, name string) (string, error) {
	idx, ok := t.index[name]
	if !ok {
		return "", apperrors.NewColumnNotFoundError(name)
	}
	return t.rows[i][idx], nil
}

// missingMarkers indexes config.MissingMarkers for per-cell lookups
var missingMarkers = func() map[string]struct{} {
	m := make(map[string]struct{}, len(config.MissingMarkers))
	for _, marker := range config.MissingMarkers {
		m[marker] = struct{}{}
	}
	return m
}()

// IsMissing reports whether a cell value counts as missing data
func IsMissing(value string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// ParseNumeric attempts to interpret a cell as a number
func ParseNumeric(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return f, err == nil
}

// Normalize canonicalizes a categorical cell value: surrounding whitespace
// trimmed, case folded
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
