package main

import (
	"fmt"
	"strconv"

	"trackmerge/internal/matcher"
	"trackmerge/internal/stats"
	"trackmerge/internal/workflow"
)

func renderRunSummary(outcome *workflow.Outcome, colorize bool) []string {
	report := outcome.Report
	totals := report.Totals
	lines := renderSectionHeader("Processing Summary", colorize)
	lines = append(lines,
		renderStatusLine("Run", statusInfo, report.RunID, colorize),
		renderStatusLine("Source", statusInfo, report.Source, colorize),
		renderStatusLine("Playlist tracks", statusInfo, strconv.Itoa(outcome.PlaylistTracks), colorize),
		renderStatusLine("Processed", statusInfo, strconv.Itoa(totals.Processed), colorize),
		renderStatusLine("New tracks", statusOK, strconv.Itoa(totals.New), colorize),
		renderStatusLine("Duplicates", statusInfo, strconv.Itoa(totals.Duplicates), colorize),
	)
	failedKind := statusOK
	if totals.Failed > 0 {
		failedKind = statusWarn
	}
	lines = append(lines,
		renderStatusLine("Not found", failedKind, strconv.Itoa(totals.Failed), colorize),
		renderStatusLine("Success rate", statusInfo, fmt.Sprintf("%.1f%%", totals.SuccessRate()), colorize),
	)
	if totals.Skipped > 0 {
		lines = append(lines, renderStatusLine("Unresolved skipped", statusInfo, strconv.Itoa(totals.Skipped), colorize))
	}
	written := statusOK
	if !report.Written {
		written = statusInfo
	}
	lines = append(lines,
		renderStatusLine("Database written", written, yesNo(report.Written), colorize),
		renderStatusLine("Database rows", statusInfo, strconv.Itoa(report.TotalRows), colorize),
	)
	if len(outcome.Removed) > 0 {
		lines = append(lines, renderStatusLine("Cleaned up", statusInfo, fmt.Sprintf("%d paths", len(outcome.Removed)), colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderConfidenceTable(totals))
	if len(report.Sources.Top) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSourceTable(report.Sources)...)
	}
	return lines
}

func renderConfidenceTable(totals stats.Accumulator) string {
	rows := make([][]string, 0, len(matcher.Confidences))
	for _, conf := range matcher.Confidences {
		rows = append(rows, []string{conf.String(), strconv.Itoa(totals.ByConfidence[conf])})
	}
	return renderTable([]string{"Confidence", "Rows"}, rows, 1)
}

func renderSourceTable(breakdown stats.Breakdown) []string {
	lines := []string{renderTable([]string{"Source", "Rows"}, countRows(breakdown.Top), 1)}
	if breakdown.Remaining > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more sources", breakdown.Remaining))
	}
	return lines
}

type reportOutput struct {
	RunID       string         `json:"run_id"`
	Source      string         `json:"source"`
	Database    string         `json:"database"`
	Processed   int            `json:"processed"`
	New         int            `json:"new"`
	Duplicates  int            `json:"duplicates"`
	Failed      int            `json:"failed"`
	Skipped     int            `json:"unresolved_skipped"`
	SuccessRate float64        `json:"success_rate"`
	Confidence  map[string]int `json:"confidence"`
	TotalRows   int            `json:"total_rows"`
	Written     bool           `json:"written"`
	Sources     []sourceOutput `json:"sources"`
	MoreSources int            `json:"more_sources,omitempty"`
}

type sourceOutput struct {
	Source string `json:"source"`
	Rows   int    `json:"rows"`
}

func reportJSON(report stats.Report) reportOutput {
	totals := report.Totals
	confidence := make(map[string]int, len(matcher.Confidences))
	for _, conf := range matcher.Confidences {
		confidence[conf.String()] = totals.ByConfidence[conf]
	}
	sources := make([]sourceOutput, 0, len(report.Sources.Top))
	for _, sc := range report.Sources.Top {
		sources = append(sources, sourceOutput{Source: sc.Source, Rows: sc.Count})
	}
	return reportOutput{
		RunID:       report.RunID,
		Source:      report.Source,
		Database:    report.Database,
		Processed:   totals.Processed,
		New:         totals.New,
		Duplicates:  totals.Duplicates,
		Failed:      totals.Failed,
		Skipped:     totals.Skipped,
		SuccessRate: totals.SuccessRate(),
		Confidence:  confidence,
		TotalRows:   report.TotalRows,
		Written:     report.Written,
		Sources:     sources,
		MoreSources: report.Sources.Remaining,
	}
}
