// Package cmd provides the dbtool commands.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"air-demand-service/internal/app"
	"air-demand-service/internal/config"
	"air-demand-service/internal/platform/db"
	"air-demand-service/internal/platform/logging"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Maintain airport data and route demand estimates",
	Long: `dbtool loads airport master data into Postgres and runs batch
route demand estimations.

Examples:
  dbtool init
  dbtool import hubs data/hubs.csv
  dbtool import positions data/GlobalAirportDatabase.txt
  dbtool routes --hub LSGG --limit 50 --out data/routes.csv
  dbtool demands data/routes.csv
  dbtool refresh
  dbtool cache clear`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		lc := logging.Config{
			Level:  cfg.LoggingConfig.Level,
			Format: "console",
			Output: cfg.LoggingConfig.Output,
		}
		if verbose {
			lc.Level = "debug"
		}
		if err := logging.Initialize(lc); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// Execute runs the CLI
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(distancesCmd)
	rootCmd.AddCommand(demandsCmd)
	rootCmd.AddCommand(indicatorsCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openDB connects to DATABASE_URL.
func openDB(ctx context.Context) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return db.Open(ctx, cfg.DatabaseURL)
}

// openRuntime wires every configured adapter for the estimation commands.
func openRuntime(ctx context.Context) (*app.Runtime, error) {
	return app.Open(ctx, cfg)
}
