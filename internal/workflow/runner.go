package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"trackmerge/internal/catalog"
	"trackmerge/internal/database"
	"trackmerge/internal/extractor"
	"trackmerge/internal/logging"
	"trackmerge/internal/matcher"
	"trackmerge/internal/metrics"
	"trackmerge/internal/notifications"
	"trackmerge/internal/playlistindex"
	"trackmerge/internal/runstore"
	"trackmerge/internal/services"
	"trackmerge/internal/stats"
)

// ExtractFunc reads a page into raw rows.
type ExtractFunc func(path string, now time.Time) (*extractor.Result, error)

// Enricher resolves a raw row to an enriched row.
type Enricher interface {
	Enrich(ctx context.Context, row *database.Row, idx *playlistindex.Index) (*database.Row, matcher.Confidence)
}

// HistoryRecorder persists run outcomes.
type HistoryRecorder interface {
	Record(ctx context.Context, run runstore.Run) error
}

// Dependencies are the collaborators a Runner drives. Enricher is required;
// the rest may be nil.
type Dependencies struct {
	Extract   ExtractFunc
	Playlists catalog.PlaylistSource
	Enricher  Enricher
	History   HistoryRecorder
	Notifier  notifications.Service
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Now       func() time.Time
	NewRunID  func() string
}

// Options select what a single run processes.
type Options struct {
	InputPath    string
	DatabasePath string
	// PlaylistRef is used when the page carries no playlist link.
	PlaylistRef      string
	PlaylistPageSize int
	DedupeUnresolved bool
	Cleanup          bool
}

// Outcome is the result of a successful run.
type Outcome struct {
	RunID          string
	PlaylistRef    string
	PlaylistTracks int
	Enriched       []*database.Row
	Merge          database.MergeResult
	Report         stats.Report
	Removed        []string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Runner executes processing runs.
type Runner struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewRunner validates deps and fills defaults.
func NewRunner(deps Dependencies) (*Runner, error) {
	if deps.Enricher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "enricher is required", nil)
	}
	if deps.Extract == nil {
		deps.Extract = extractor.ExtractFile
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "workflow"),
	}, nil
}

// Run processes opts.InputPath into opts.DatabasePath. Input and persistence
// failures abort the run; catalog failures only degrade match quality.
func (r *Runner) Run(ctx context.Context, opts Options) (*Outcome, error) {
	out := &Outcome{
		RunID:     r.deps.NewRunID(),
		StartedAt: r.deps.Now(),
	}
	source := filepath.Base(opts.InputPath)
	ctx = services.WithRunID(ctx, out.RunID)
	ctx = services.WithSource(ctx, source)
	logger := logging.WithContext(ctx, r.logger)

	var acc stats.Accumulator
	err := r.run(ctx, logger, opts, out, &acc)
	out.FinishedAt = r.deps.Now()
	r.finish(ctx, logger, opts, out, acc, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, opts Options, out *Outcome, acc *stats.Accumulator) error {
	if strings.TrimSpace(opts.InputPath) == "" {
		return services.Wrap(services.ErrInput, "extract", "open", "no input file given", nil)
	}

	store, err := database.Open(opts.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Debug("database lock release failed", logging.Error(cerr))
		}
	}()
	table, err := store.Load()
	if err != nil {
		return err
	}

	extractLog := stageLogger(logger, "extract")
	extractLog.Info("extracting rows", logging.String("input", opts.InputPath))
	extracted, err := r.deps.Extract(opts.InputPath, out.StartedAt)
	if err != nil {
		return err
	}
	extractLog.Info("rows extracted",
		logging.Int("rows", len(extracted.Rows)),
		logging.Bool("playlist_link_found", extracted.PlaylistRef != ""))

	out.PlaylistRef = extracted.PlaylistRef
	if out.PlaylistRef == "" {
		out.PlaylistRef = strings.TrimSpace(opts.PlaylistRef)
	}
	matchLog := stageLogger(logger, "match")
	idx := playlistindex.FromPlaylist(ctx, r.deps.Playlists, out.PlaylistRef, opts.PlaylistPageSize, matchLog)
	out.PlaylistTracks = idx.Len()

	out.Enriched, err = r.enrich(ctx, matchLog, extracted.Rows, idx, acc)
	if err != nil {
		return err
	}

	out.Merge = database.Merge(table, out.Enriched, database.MergeOptions{DedupeUnresolved: opts.DedupeUnresolved})
	acc.RecordMerge(out.Merge)
	if err := store.Commit(&out.Merge); err != nil {
		return err
	}
	r.deps.Metrics.ObserveMerge(out.Merge.NewCount, out.Merge.DuplicateCount,
		len(out.Merge.Added)-out.Merge.NewCount, out.Merge.UnresolvedSkipped)
	stageLogger(logger, "merge").Info("merge complete",
		logging.Int("new", out.Merge.NewCount),
		logging.Int("duplicates", out.Merge.DuplicateCount),
		logging.Int("added_rows", len(out.Merge.Added)),
		logging.Bool("written", out.Merge.Written))

	if opts.Cleanup {
		cleanupLog := stageLogger(logger, "cleanup")
		removed, err := extractor.Cleanup(filepath.Dir(opts.InputPath), cleanupLog)
		out.Removed = removed
		if err != nil {
			logging.WarnWithContext(cleanupLog, "cleanup incomplete", "cleanup_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the saved page files by hand"),
				logging.String(logging.FieldImpact, "the database was updated; only cleanup is affected"))
		}
	}

	out.Report = stats.BuildReport(out.RunID, filepath.Base(opts.InputPath), store.Path(), *acc, out.Merge.Table, out.Merge.Written)
	return nil
}

func stageLogger(logger *slog.Logger, stage string) *slog.Logger {
	return logger.With(logging.String(logging.FieldStage, stage))
}

func (r *Runner) enrich(ctx context.Context, logger *slog.Logger, rows []*database.Row, idx *playlistindex.Index, acc *stats.Accumulator) ([]*database.Row, error) {
	total := len(rows)
	logger.Info("matching rows", logging.Int("rows", total), logging.Int("playlist_tracks", idx.Len()))
	enriched := make([]*database.Row, 0, total)
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("matching interrupted after %d of %d rows: %w", i, total, err)
		}
		out, conf := r.deps.Enricher.Enrich(ctx, row, idx)
		acc.RecordMatch(conf)
		r.deps.Metrics.ObserveMatch(conf.String())
		logger.Info(fmt.Sprintf("%d/%d %s - %s", i+1, total, row.Artist(), row.Title()),
			logging.String("confidence", conf.String()),
			logging.String("track_name", out.Value(catalog.ColumnTrackName)))
		enriched = append(enriched, out)
	}
	return enriched, nil
}

// finish records history and metrics for both successful and failed runs.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, opts Options, out *Outcome, acc stats.Accumulator, runErr error) {
	status := services.RunStatus(runErr)
	totalRows := 0
	if out.Merge.Table != nil {
		totalRows = out.Merge.Table.Len()
	}
	r.deps.Metrics.ObserveRun(status, out.FinishedAt.Sub(out.StartedAt), totalRows, out.FinishedAt)

	if r.deps.History != nil {
		counts := make(map[string]int, len(acc.ByConfidence))
		for conf, n := range acc.ByConfidence {
			counts[conf.String()] = n
		}
		record := runstore.Run{
			ID:                out.RunID,
			Source:            filepath.Base(opts.InputPath),
			InputPath:         opts.InputPath,
			PlaylistRef:       out.PlaylistRef,
			DatabasePath:      opts.DatabasePath,
			Status:            status,
			Processed:         acc.Processed,
			New:               acc.New,
			Duplicates:        acc.Duplicates,
			Failed:            acc.Failed,
			UnresolvedSkipped: acc.Skipped,
			TotalRows:         totalRows,
			ConfidenceCounts:  counts,
			StartedAt:         out.StartedAt,
			FinishedAt:        out.FinishedAt,
		}
		if runErr != nil {
			record.ErrorMessage = runErr.Error()
		}
		// A cancelled run still gets recorded.
		if err := r.deps.History.Record(context.WithoutCancel(ctx), record); err != nil {
			logging.WarnWithContext(logger, "run history not recorded", "run_history_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.history_db is writable"),
				logging.String(logging.FieldImpact, "this run will not appear in 'trackmerge runs'"))
		}
	}

	r.notify(ctx, logger, out, acc, totalRows, runErr)

	if runErr != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Error(runErr),
			logging.String("status", status),
			logging.Duration("elapsed", out.FinishedAt.Sub(out.StartedAt)))
		return
	}
	logger.Info("run complete",
		logging.String("status", status),
		logging.Int("processed", acc.Processed),
		logging.Int("new", acc.New),
		logging.Int("duplicates", acc.Duplicates),
		logging.Int("failed", acc.Failed),
		logging.Float64("success_rate", acc.SuccessRate()),
		logging.Duration("elapsed", out.FinishedAt.Sub(out.StartedAt)))
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, out *Outcome, acc stats.Accumulator, totalRows int, runErr error) {
	if r.deps.Notifier == nil || errors.Is(runErr, context.Canceled) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	source, _ := services.SourceFromContext(ctx)
	var err error
	if runErr != nil {
		err = r.deps.Notifier.NotifyRunFailed(ctx, source, runErr)
	} else {
		err = r.deps.Notifier.NotifyRunCompleted(ctx, notifications.RunSummary{
			Source:      source,
			Processed:   acc.Processed,
			New:         acc.New,
			Duplicates:  acc.Duplicates,
			Failed:      acc.Failed,
			SuccessRate: acc.SuccessRate(),
			TotalRows:   totalRows,
			Elapsed:     out.FinishedAt.Sub(out.StartedAt),
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "run notification not sent", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "the run itself is unaffected"))
	}
}
