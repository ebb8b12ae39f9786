package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"trackmerge/internal/catalog"
	"trackmerge/internal/config"
	"trackmerge/internal/logging"
	"trackmerge/internal/matcher"
	"trackmerge/internal/metrics"
	"trackmerge/internal/notifications"
	"trackmerge/internal/runstore"
	"trackmerge/internal/searchcache"
	"trackmerge/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		playlistRef      string
		databasePath     string
		metricsFile      string
		cleanup          bool
		dedupeUnresolved bool
		jsonOutput       bool
	)

	cmd := &cobra.Command{
		Use:   "process [html-file]",
		Short: "Extract a saved ranking page, match it against Spotify, and merge it into the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			input := cfg.Paths.InputHTML
			if len(args) == 1 {
				if input, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve input path: %w", err)
				}
			}
			dbPath := cfg.Paths.Database
			if strings.TrimSpace(databasePath) != "" {
				if dbPath, err = config.ExpandPath(databasePath); err != nil {
					return fmt.Errorf("resolve database path: %w", err)
				}
			}

			client, err := catalog.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
				catalog.WithBaseURL(cfg.Spotify.APIBaseURL),
				catalog.WithTokenURL(cfg.Spotify.TokenURL),
				catalog.WithMarket(cfg.Spotify.Market),
				catalog.WithHTTPClient(&http.Client{Timeout: cfg.SpotifyTimeout()}),
				catalog.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			cache, err := searchcache.Open(cfg, logger)
			if err != nil {
				return err
			}
			if cache != nil {
				defer cache.Close()
			}
			searcher := searchcache.Wrap(catalog.Pace(client, cfg.SearchDelay()), cache, logger)
			m := matcher.New(searcher,
				matcher.WithLogger(logger),
				matcher.WithLimits(cfg.Matching.QualifiedLimit, cfg.Matching.LooseLimit),
			)

			var history workflow.HistoryRecorder
			if store := openHistory(cmd, cfg, logger); store != nil {
				defer store.Close()
				history = store
			}

			met := metrics.New()
			runner, err := workflow.NewRunner(workflow.Dependencies{
				Playlists: client,
				Enricher:  m,
				History:   history,
				Notifier:  notifications.NewService(cfg),
				Metrics:   met,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			outcome, runErr := runner.Run(cmd.Context(), workflow.Options{
				InputPath:        input,
				DatabasePath:     dbPath,
				PlaylistRef:      playlistRef,
				PlaylistPageSize: cfg.Matching.PlaylistPageSize,
				DedupeUnresolved: dedupeUnresolved || cfg.Matching.DedupeUnresolved,
				Cleanup:          cleanup,
			})
			if metricsFile != "" {
				if err := met.WriteTextfile(metricsFile); err != nil {
					logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
						logging.String("path", metricsFile),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check the metrics file directory exists and is writable"),
						logging.String(logging.FieldImpact, "node exporter will not see this run"))
				}
			}
			if runErr != nil {
				return runErr
			}

			if jsonOutput {
				return writeJSON(cmd, reportJSON(outcome.Report))
			}
			out := cmd.OutOrStdout()
			printLines(out, renderRunSummary(outcome, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVar(&playlistRef, "playlist", "", "Playlist URL or URI to use when the page has no playlist link")
	cmd.Flags().StringVar(&databasePath, "database", "", "Database CSV path (overrides paths.database)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this path")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Remove the saved page and its asset folder after a successful merge")
	cmd.Flags().BoolVar(&dedupeUnresolved, "dedupe-unresolved", false, "Skip unmatched rows already stored for the same page")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}

// openHistory returns nil when run history is unavailable; processing
// continues without it.
func openHistory(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *runstore.Store {
	store, err := runstore.Open(cmd.Context(), cfg.Paths.HistoryDB)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "run_history_open_failed",
			logging.String("path", cfg.Paths.HistoryDB),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_db"),
			logging.String(logging.FieldImpact, "this run will not be recorded"))
		return nil
	}
	return store
}
