// Package cmd defines the command-line interface for quotagraph.
package cmd

import (
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(barsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeRollupCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("window", string(schema.FiveHourWindow), "Quota window: five_hour or seven_day")
	rootCmd.PersistentFlags().StringP("range", "r", string(schema.Last24Hours), "Time range: last_24h or last_7d or last_30d or all_time")
	rootCmd.PersistentFlags().String("end", "", "End of the range in ISO8601 or time ago (defaults to now)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for calendar buckets (defaults to local)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("table-width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Float64("width", contract.DefaultChartWidth, "Chart width in display units")
	rootCmd.PersistentFlags().Float64("height", contract.DefaultChartHeight, "Chart height in display units")
	rootCmd.PersistentFlags().Int("poll-interval", contract.DefaultPollIntervalSec, "Seconds between readings, used to size gaps")
	rootCmd.PersistentFlags().String("min-segment", "", "Shortest data segment kept on its own (e.g., 5m)")
	rootCmd.PersistentFlags().String("resolution", "", "Bar resolution: raw or five_minute or hourly or daily (defaults per range)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of storeRollupCmd to Viper
	storeRollupCmd.Flags().String("rollup-after", "7 days", "Compact readings older than this age")
	if err := viper.BindPFlags(storeRollupCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store rollup flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
