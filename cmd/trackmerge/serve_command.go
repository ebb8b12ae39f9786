package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trackmerge/internal/config"
	"trackmerge/internal/metrics"
	"trackmerge/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind, databasePath, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer page and the database as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			opts := server.OptionsFromConfig(cfg, logger, metrics.New())
			if strings.TrimSpace(bind) != "" {
				opts.Bind = strings.TrimSpace(bind)
			}
			if strings.TrimSpace(databasePath) != "" {
				if opts.DatabasePath, err = config.ExpandPath(databasePath); err != nil {
					return fmt.Errorf("resolve database path: %w", err)
				}
			}
			if strings.TrimSpace(staticDir) != "" {
				if opts.StaticDir, err = config.ExpandPath(staticDir); err != nil {
					return fmt.Errorf("resolve static dir: %w", err)
				}
			}
			return server.New(opts).Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	cmd.Flags().StringVar(&databasePath, "database", "", "Database CSV path (overrides paths.database)")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "Directory of static files (overrides paths.static_dir)")
	return cmd
}
