// File path: internal/metrics/table.go
package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Table is a header-indexed CSV table held in memory. Rows are not modified
// after loading.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadTable loads a CSV file whose first record is the header row.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer file.Close()
	return ParseTable(path, file)
}

// ParseTable reads CSV records from r. name is recorded as the table path for
// error reporting.
func ParseTable(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataError{Path: name, Err: errors.New("table has no header row")}
		}
		return nil, fmt.Errorf("read header %s: %w", name, err)
	}
	t := &Table{Path: name, index: make(map[string]int, len(header))}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		t.Header = append(t.Header, col)
		if _, exists := t.index[col]; !exists {
			t.index[col] = i
		}
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %s: %w", name, err)
		}
		if blankRecord(record) {
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether the header contains the column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Require returns a DataError naming the first absent column.
func (t *Table) Require(dimension string, columns ...string) error {
	for _, col := range columns {
		if !t.Has(col) {
			return &DataError{Dimension: dimension, Path: t.Path, Column: col, Err: ErrMissingColumn}
		}
	}
	return nil
}

// String returns the trimmed cell text; absent cells read as "".
func (t *Table) String(row int, column string) string {
	idx, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	record := t.Rows[row]
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Float parses a numeric cell. Blank and NaN cells report ok=false so they
// drop out of aggregates.
func (t *Table) Float(dimension string, row int, column string) (value float64, ok bool, err error) {
	raw := t.String(row, column)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, &DataError{Dimension: dimension, Path: t.Path, Column: column, Row: row + 1, Value: raw, Err: ErrNotNumeric}
	}
	return value, true, nil
}
