package cmd

import (
	"github.com/huangsam/quotagraph/core"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/spf13/cobra"
)

// chartCmd renders the utilization line chart for one window.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show quota utilization as step-chart segments.",
	Long: `Build the line chart for a quota window over the selected range.

Readings are split into segments at window resets and at polling gaps.
Each segment is smoothed so utilization never dips inside a window, and
every point carries a trend level (flat, rising, steep).

Examples:
  # Chart the 5-hour window over the last day
  quotagraph chart

  # Chart the 7-day window over the last month
  quotagraph chart --window seven_day --range last_30d

  # Export chart vertices for plotting elsewhere
  quotagraph chart --output csv --output-file chart.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteChart(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build chart", err)
		}
	},
}
