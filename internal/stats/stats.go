// Package stats summarizes a run and the database it produced. Nothing here
// influences matching or merging.
package stats

import (
	"math"
	"sort"

	"trackmerge/internal/database"
	"trackmerge/internal/matcher"
)

// DefaultSourceLimit caps the per-source breakdown in reports.
const DefaultSourceLimit = 5

// Accumulator collects per-run counters. The zero value is ready to use and
// each run gets its own.
type Accumulator struct {
	Processed    int
	New          int
	Duplicates   int
	Failed       int
	Skipped      int
	ByConfidence map[matcher.Confidence]int
}

// RecordMatch counts one matched row.
func (a *Accumulator) RecordMatch(conf matcher.Confidence) {
	a.Processed++
	if a.ByConfidence == nil {
		a.ByConfidence = make(map[matcher.Confidence]int)
	}
	a.ByConfidence[conf]++
	if conf == matcher.ConfidenceNotFound {
		a.Failed++
	}
}

// RecordMerge folds in the outcome of a merge.
func (a *Accumulator) RecordMerge(result database.MergeResult) {
	a.New += result.NewCount
	a.Duplicates += result.DuplicateCount
	a.Skipped += result.UnresolvedSkipped
}

// SuccessRate is the percentage of processed rows that found a catalog
// record, rounded to one decimal place. It is 0 when nothing was processed.
func (a Accumulator) SuccessRate() float64 {
	if a.Processed == 0 {
		return 0
	}
	rate := float64(a.Processed-a.Failed) / float64(a.Processed) * 100
	return math.Round(rate*10) / 10
}

// SourceCount is the number of database rows from one source page.
type SourceCount struct {
	Source string
	Count  int
}

// Breakdown is the top sources plus how many other sources exist.
type Breakdown struct {
	Top       []SourceCount
	Remaining int
}

// SourceBreakdown counts rows per value of column, ordered by count
// descending then name ascending, keeping at most limit entries. A table
// without the column yields an empty breakdown.
func SourceBreakdown(table *database.Table, column string, limit int) Breakdown {
	if table == nil || !table.Schema.Has(column) {
		return Breakdown{}
	}
	counts := make(map[string]int)
	for _, row := range table.Rows {
		counts[row.Value(column)]++
	}
	all := make([]SourceCount, 0, len(counts))
	for source, count := range counts {
		all = append(all, SourceCount{Source: source, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Source < all[j].Source
	})
	if limit <= 0 || len(all) <= limit {
		return Breakdown{Top: all}
	}
	return Breakdown{Top: all[:limit], Remaining: len(all) - limit}
}

// Report is the end-of-run summary.
type Report struct {
	RunID     string
	Source    string
	Database  string
	Totals    Accumulator
	TotalRows int
	Sources   Breakdown
	Written   bool
}

// BuildReport assembles a report from run counters and the resulting table.
func BuildReport(runID, source, databasePath string, totals Accumulator, table *database.Table, written bool) Report {
	return Report{
		RunID:     runID,
		Source:    source,
		Database:  databasePath,
		Totals:    totals,
		TotalRows: table.Len(),
		Sources:   SourceBreakdown(table, database.ColumnSourceHTML, DefaultSourceLimit),
		Written:   written,
	}
}
