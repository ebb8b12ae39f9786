package database

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"trackmerge/internal/catalog"
	"trackmerge/internal/fileutil"
)

// Table is the in-memory form of the database file.
type Table struct {
	Schema *Schema
	Rows   []*Row
}

// NewTable returns an empty table with an empty schema.
func NewTable() *Table {
	return &Table{Schema: NewSchema()}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IDs returns the set of non-empty track IDs present in the table.
func (t *Table) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, t.Len())
	if t == nil {
		return ids
	}
	for _, row := range t.Rows {
		if id := row.Value(catalog.ColumnTrackID); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// Load reads the CSV database at path. A missing file yields an empty table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewTable(), nil
		}
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a CSV database from r. The first record is the header; short
// records are padded with empty strings and extra cells are dropped.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable(), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	// A repeated header name keeps its first position; later copies are
	// skipped so the remaining cells stay under their own columns.
	table := &Table{Schema: NewSchema()}
	positions := make([]int, 0, len(header))
	for i, col := range header {
		if table.Schema.Extend(col) == 1 {
			positions = append(positions, i)
		}
	}
	cols := table.Schema.Columns()
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+1, err)
		}
		row := NewRow()
		for i, col := range cols {
			value := ""
			if pos := positions[i]; pos < len(record) {
				value = record[pos]
			}
			row.Set(col, value)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Write renders the table as CSV with a header row in schema order.
func (t *Table) Write(w io.Writer) error {
	cols := t.Schema.Columns()
	writer := csv.NewWriter(w)
	if err := writer.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(cols))
	for _, row := range t.Rows {
		for i, col := range cols {
			record[i] = row.Value(col)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Save atomically replaces the file at path with the table contents.
func (t *Table) Save(path string) error {
	return fileutil.WriteAtomicFunc(path, 0o644, t.Write)
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
