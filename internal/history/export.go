package history

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/internal/parquet"
	"github.com/huangsam/quotagraph/schema"
)

// ExecuteHistoryExport writes every reading and rollup in the store to
// <outputFile>.readings.parquet and <outputFile>.rollups.parquet.
func ExecuteHistoryExport(ctx context.Context, w io.Writer, mgr contract.StoreManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetSampleStore()
	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	totalRollups := 0
	for _, n := range status.RollupCounts {
		totalRollups += n
	}
	if status.TotalReadings == 0 && totalRollups == 0 {
		return errors.New("no history data found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	readings, err := store.ListReadings(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve readings: %w", err)
	}
	var rollups []schema.Rollup
	for _, res := range schema.AllResolutions {
		rows, err := store.ListRollups(ctx, res, 0, 0)
		if err != nil {
			return fmt.Errorf("failed to retrieve %s rollups: %w", res, err)
		}
		rollups = append(rollups, rows...)
	}

	readingsFile := outputFile + ".readings.parquet"
	if err := parquet.WriteReadingsParquet(parquet.ConvertReadings(readings), readingsFile); err != nil {
		return fmt.Errorf("failed to write readings: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d readings to: %s\n", len(readings), readingsFile)

	rollupsFile := outputFile + ".rollups.parquet"
	if err := parquet.WriteRollupsParquet(parquet.ConvertRollups(rollups), rollupsFile); err != nil {
		return fmt.Errorf("failed to write rollups: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d rollups to: %s\n", len(rollups), rollupsFile)
	return nil
}
