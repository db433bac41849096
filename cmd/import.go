package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/quotagraph/core"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/spf13/cobra"
)

// importCmd loads readings from a file into the history store.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load readings from CSV or JSON into the history store.",
	Long: `Ingest polled usage readings into the configured history backend.

Accepted formats:
- .csv with a header naming timestamp, five_hour_util, five_hour_resets_at,
  seven_day_util, seven_day_resets_at (any order, extra columns ignored)
- .json holding an array of readings
- .jsonl or .ndjson with one reading per line

Timestamps are epoch milliseconds or RFC3339. Readings whose timestamp is
already stored are skipped, so importing the same file twice is harmless.

Examples:
  quotagraph import usage.csv
  QUOTAGRAPH_HISTORY_BACKEND=postgresql quotagraph import usage.jsonl`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		summary, err := core.ImportReadings(rootCtx, storeManager, args[0])
		if err != nil {
			contract.LogFatal("Cannot import readings", err)
		}
		fmt.Printf("Imported %s of %s readings from %s.\n",
			humanize.Comma(int64(summary.Inserted)), humanize.Comma(int64(summary.Parsed)), summary.Path)
	},
}
