package database

import (
	"trackmerge/internal/catalog"
)

// MergeOptions tunes how a batch is folded into the database.
type MergeOptions struct {
	// DedupeUnresolved drops a row without a track ID when a row with the
	// same artist, title, and source document is already stored unresolved.
	DedupeUnresolved bool
}

// MergeResult describes the outcome of Merge.
type MergeResult struct {
	Table *Table
	// Added holds the accepted rows in input order, after backfill.
	Added []*Row
	// NewCount counts accepted rows that carry a track ID.
	NewCount int
	// DuplicateCount counts rows skipped because their track ID was known.
	DuplicateCount int
	// UnresolvedSkipped counts unresolved rows dropped by DedupeUnresolved.
	UnresolvedSkipped int
	// Written is set by Store.Commit once the table reaches disk.
	Written bool
}

// Merge appends rows to existing without modifying it and returns the new
// table. Rows whose non-empty track ID is already present, either in
// existing or earlier in the batch, are counted as duplicates and skipped.
// Rows without a track ID are always accepted unless DedupeUnresolved is set.
// The schema keeps existing's column order and appends new columns in the
// order they first appear among accepted rows; every row is backfilled with
// "" for columns it lacks.
func Merge(existing *Table, rows []*Row, opts MergeOptions) MergeResult {
	if existing == nil {
		existing = NewTable()
	}

	seen := existing.IDs()
	var unresolved map[unresolvedKey]struct{}
	if opts.DedupeUnresolved {
		unresolved = make(map[unresolvedKey]struct{})
		for _, row := range existing.Rows {
			if row.Value(catalog.ColumnTrackID) == "" {
				unresolved[keyOf(row)] = struct{}{}
			}
		}
	}

	result := MergeResult{}
	accepted := make([]*Row, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		id := row.Value(catalog.ColumnTrackID)
		if id != "" {
			if _, dup := seen[id]; dup {
				result.DuplicateCount++
				continue
			}
			seen[id] = struct{}{}
			result.NewCount++
			accepted = append(accepted, row)
			continue
		}
		if unresolved != nil {
			key := keyOf(row)
			if _, dup := unresolved[key]; dup {
				result.UnresolvedSkipped++
				continue
			}
			unresolved[key] = struct{}{}
		}
		accepted = append(accepted, row)
	}

	schema := existing.Schema.Clone()
	for _, row := range accepted {
		schema.Extend(row.Keys()...)
	}

	table := &Table{Schema: schema, Rows: make([]*Row, 0, len(existing.Rows)+len(accepted))}
	for _, row := range existing.Rows {
		table.Rows = append(table.Rows, backfill(row, schema))
	}
	for _, row := range accepted {
		filled := backfill(row, schema)
		table.Rows = append(table.Rows, filled)
		result.Added = append(result.Added, filled)
	}
	result.Table = table
	return result
}

type unresolvedKey struct {
	artist, title, source string
}

func keyOf(row *Row) unresolvedKey {
	return unresolvedKey{
		artist: row.Artist(),
		title:  row.Title(),
		source: row.Value(ColumnSourceHTML),
	}
}

// backfill returns a copy of row laid out in schema order with "" for
// missing columns.
func backfill(row *Row, schema *Schema) *Row {
	out := NewRow()
	for _, col := range schema.columns {
		out.Set(col, row.Value(col))
	}
	return out
}
