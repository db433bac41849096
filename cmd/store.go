package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/quotagraph/core"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/internal/history"
	"github.com/huangsam/quotagraph/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveStoreConfig reads only the history settings from config, env and flags.
func resolveStoreConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := resolveStoreConfig(); err != nil {
		return err
	}
	if err := history.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetupWrapper resolves the backend without opening the store,
// so migrations can run against a fresh or downgraded database.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := resolveStoreConfig(); err != nil {
		return err
	}
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect == "" {
		cfg.HistoryDBConnect = contract.GetHistoryDBFilePath()
	}
	return nil
}

// sqliteFilePath returns the SQLite file backing the history store.
func sqliteFilePath() string {
	if cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return contract.GetHistoryDBFilePath()
}

// storeCmd focused on history store management.
//
// Note: Most store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by chart commands. Only rollup needs the full config.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the reading history store",
	Long: `Manage the history of polled readings and their rollups.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show reading and rollup counts
  clear   - Remove all stored history
  migrate - Run schema migrations
  export  - Export history to Parquet
  rollup  - Compact old readings into hourly and daily rollups`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show detailed information about the history store.

Displays:
- Backend type and connection status
- Total number of readings and the span they cover
- Rollup counts per resolution
- Schema version and table size

Examples:
  quotagraph store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetSampleStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintHistoryStatus(os.Stdout, status)
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored readings and rollups",
	Long: `Delete all history from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the readings, rollups and migration tables

Examples:
  # Export before clearing
  quotagraph store export --output-file backup
  quotagraph store clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return resolveStoreConfig()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ClearHistory(cfg.HistoryBackend, sqliteFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the history store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  quotagraph store migrate

  # Migrate to specific version
  quotagraph store migrate --target-version 1

  # Rollback to initial state
  quotagraph store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		v, err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Printf("History schema is at version %d.\n", v)
	},
}

// storeExportCmd exports history to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history to Parquet for BI tools and analytics",
	Long: `Export all stored readings and rollups to Parquet.

Writes <output-file>.readings.parquet and <output-file>.rollups.parquet.

Requires: --output-file parameter

Examples:
  quotagraph store export --output-file usage
  duckdb -c "SELECT max(five_hour_util) FROM read_parquet('usage.readings.parquet')"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExecuteHistoryExport(rootCtx, os.Stdout, storeManager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// storeRollupCmd compacts old readings.
var storeRollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Compact old readings into hourly and daily rollups",
	Long: `Summarize readings older than --rollup-after into hourly and daily rollups
and delete the raw rows. Bar charts keep showing compacted periods.

The cutoff is aligned to midnight in --timezone so that no day is split
between rollups and raw readings.

Examples:
  quotagraph store rollup
  quotagraph store rollup --rollup-after "30 days" --timezone UTC`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		summary, err := core.RollupStore(rootCtx, cfg, storeManager)
		if err != nil {
			contract.LogFatal("Failed to roll up history", err)
		}
		if summary.ReadingsRolled == 0 {
			fmt.Printf("Nothing to roll up before %s.\n", summary.Cutoff.Format(contract.DateTimeFormat))
			return
		}
		fmt.Printf("Rolled %s readings before %s into %d hourly and %d daily rollups; deleted %s readings.\n",
			humanize.Comma(int64(summary.ReadingsRolled)), summary.Cutoff.Format(contract.DateTimeFormat),
			summary.HourlyRollups, summary.DailyRollups, humanize.Comma(summary.ReadingsDeleted))
	},
}
