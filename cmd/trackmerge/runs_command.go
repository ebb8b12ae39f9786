package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trackmerge/internal/runstore"
	"trackmerge/internal/services"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recent processing runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runstore.Open(cmd.Context(), cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if errors.Is(err, runstore.ErrNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runJSON(*run))
				}
				out := cmd.OutOrStdout()
				printLines(out, renderRunDetail(*run, shouldColorize(out)))
				return nil
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				items := make([]runOutput, 0, len(runs))
				for _, run := range runs {
					items = append(items, runJSON(run))
				}
				return writeJSON(cmd, items)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func renderRunsTable(runs []runstore.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Source,
			run.Status,
			strconv.Itoa(run.Processed),
			strconv.Itoa(run.New),
			strconv.Itoa(run.Duplicates),
			strconv.Itoa(run.Failed),
			run.Duration().Round(time.Second).String(),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Source", "Status", "Processed", "New", "Dup", "Not found", "Took"},
		rows,
		4,
	)
}

func renderRunDetail(run runstore.Run, colorize bool) []string {
	kind := statusOK
	switch run.Status {
	case services.RunRejected:
		kind = statusWarn
	case services.RunFailed:
		kind = statusError
	}
	lines := renderSectionHeader("Run "+run.ID, colorize)
	lines = append(lines,
		renderStatusLine("Status", kind, run.Status, colorize),
		renderStatusLine("Source", statusInfo, run.Source, colorize),
		renderStatusLine("Database", statusInfo, run.DatabasePath, colorize),
		renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.RFC3339), colorize),
		renderStatusLine("Took", statusInfo, run.Duration().Round(time.Millisecond).String(), colorize),
		renderStatusLine("Processed", statusInfo, strconv.Itoa(run.Processed), colorize),
		renderStatusLine("New / duplicates", statusInfo, fmt.Sprintf("%d / %d", run.New, run.Duplicates), colorize),
		renderStatusLine("Not found", statusInfo, strconv.Itoa(run.Failed), colorize),
		renderStatusLine("Database rows", statusInfo, strconv.Itoa(run.TotalRows), colorize),
	)
	if run.PlaylistRef != "" {
		lines = append(lines, renderStatusLine("Playlist", statusInfo, run.PlaylistRef, colorize))
	}
	if run.ErrorMessage != "" {
		lines = append(lines, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
	}
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type runOutput struct {
	ID                string         `json:"id"`
	Source            string         `json:"source"`
	InputPath         string         `json:"input_path"`
	PlaylistRef       string         `json:"playlist_ref,omitempty"`
	DatabasePath      string         `json:"database_path"`
	Status            string         `json:"status"`
	Error             string         `json:"error,omitempty"`
	Processed         int            `json:"processed"`
	New               int            `json:"new"`
	Duplicates        int            `json:"duplicates"`
	Failed            int            `json:"failed"`
	UnresolvedSkipped int            `json:"unresolved_skipped"`
	TotalRows         int            `json:"total_rows"`
	Confidence        map[string]int `json:"confidence,omitempty"`
	StartedAt         time.Time      `json:"started_at"`
	FinishedAt        time.Time      `json:"finished_at"`
}

func runJSON(run runstore.Run) runOutput {
	return runOutput{
		ID:                run.ID,
		Source:            run.Source,
		InputPath:         run.InputPath,
		PlaylistRef:       run.PlaylistRef,
		DatabasePath:      run.DatabasePath,
		Status:            run.Status,
		Error:             run.ErrorMessage,
		Processed:         run.Processed,
		New:               run.New,
		Duplicates:        run.Duplicates,
		Failed:            run.Failed,
		UnresolvedSkipped: run.UnresolvedSkipped,
		TotalRows:         run.TotalRows,
		Confidence:        run.ConfidenceCounts,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
	}
}
