package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trackmerge/internal/config"
	"trackmerge/internal/database"
	"trackmerge/internal/stats"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var databasePath string
	var top int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the database by match confidence and source page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Paths.Database
			if strings.TrimSpace(databasePath) != "" {
				if path, err = config.ExpandPath(databasePath); err != nil {
					return fmt.Errorf("resolve database path: %w", err)
				}
			}
			table, err := database.Load(path)
			if err != nil {
				return err
			}

			confidence := stats.SourceBreakdown(table, database.ColumnMatchConfidence, 0)
			sources := stats.SourceBreakdown(table, database.ColumnSourceHTML, top)
			if jsonOutput {
				return writeJSON(cmd, databaseReport{
					Database:    path,
					TotalRows:   table.Len(),
					Columns:     table.Schema.Len(),
					Confidence:  countsJSON(confidence.Top),
					Sources:     countsJSON(sources.Top),
					MoreSources: sources.Remaining,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printLines(out, renderSectionHeader("Database", colorize))
			fmt.Fprintln(out, renderStatusLine("Path", statusInfo, path, colorize))
			fmt.Fprintln(out, renderStatusLine("Rows", statusInfo, strconv.Itoa(table.Len()), colorize))
			fmt.Fprintln(out, renderStatusLine("Columns", statusInfo, strconv.Itoa(table.Schema.Len()), colorize))
			if table.Len() == 0 {
				return nil
			}
			if len(confidence.Top) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Confidence", "Rows"}, countRows(confidence.Top), 1))
			}
			if len(sources.Top) > 0 {
				fmt.Fprintln(out)
				printLines(out, renderSourceTable(sources))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&databasePath, "database", "", "Database CSV path (overrides paths.database)")
	cmd.Flags().IntVar(&top, "top", stats.DefaultSourceLimit, "Number of source pages to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

type databaseReport struct {
	Database    string         `json:"database"`
	TotalRows   int            `json:"total_rows"`
	Columns     int            `json:"columns"`
	Confidence  []sourceOutput `json:"confidence"`
	Sources     []sourceOutput `json:"sources"`
	MoreSources int            `json:"more_sources,omitempty"`
}

func countsJSON(counts []stats.SourceCount) []sourceOutput {
	out := make([]sourceOutput, 0, len(counts))
	for _, c := range counts {
		out = append(out, sourceOutput{Source: c.Source, Rows: c.Count})
	}
	return out
}
