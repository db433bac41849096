// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/internal/parquet"
	"github.com/huangsam/quotagraph/schema"
)

// PrintChartResult outputs the chart result, dispatching based on the output format configured.
func PrintChartResult(result *schema.ChartResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON chart"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartCSV(w, result, fmtFloat)
		}, "Wrote CSV chart"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteChartPointsParquet(parquet.ConvertSegments(result.Segments), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet chart to %s\n", cfg.OutputFile)
	case schema.TextOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote chart table"); err != nil {
			return fmt.Errorf("error writing chart table output: %w", err)
		}
	}
	return nil
}

// PrintBarResult outputs the bar result, dispatching based on the output format configured.
func PrintBarResult(result *schema.BarResult, cfg *contract.Config, duration time.Duration) error {
	_, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON bars"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBarsCSV(w, result, fmtOptional)
		}, "Wrote CSV bars"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteBucketsParquet(parquet.ConvertBuckets(result.Buckets), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet bars to %s\n", cfg.OutputFile)
	case schema.TextOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBarsTable(w, result, cfg, fmtOptional, GetMaxBarWidth(cfg), duration)
		}, "Wrote bars table"); err != nil {
			return fmt.Errorf("error writing bars table output: %w", err)
		}
	}
	return nil
}
