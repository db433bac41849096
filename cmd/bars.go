package cmd

import (
	"github.com/huangsam/quotagraph/core"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/spf13/cobra"
)

// barsCmd renders calendar-bucket usage bars.
var barsCmd = &cobra.Command{
	Use:   "bars",
	Short: "Show peak usage per calendar period.",
	Long: `Aggregate readings and stored rollups into calendar buckets.

Each bucket reports peak, minimum and average utilization for both quota
windows plus the number of window resets observed. Periods with no data
are listed as missing ranges.

The resolution follows the range (five_minute for last_24h, hourly for
last_7d, daily beyond) unless --resolution overrides it.

Examples:
  # Hourly bars over the last week
  quotagraph bars --range last_7d

  # Daily bars for everything stored, in UTC
  quotagraph bars --range all_time --timezone UTC

  # JSON for dashboards
  quotagraph bars --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBars(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build bars", err)
		}
	},
}
