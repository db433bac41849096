// Package parquet provides row types and writers for exporting quota history
// and chart output to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/quotagraph/schema"
	"github.com/parquet-go/parquet-go"
)

// Reading maps to the quotagraph_readings database table.
type Reading struct {
	// Timestamp is when the usage endpoint was polled
	Timestamp time.Time `parquet:"timestamp,snappy"`

	FiveHourUtil     *float64   `parquet:"five_hour_util,optional,snappy"`
	FiveHourResetsAt *time.Time `parquet:"five_hour_resets_at,optional,snappy"`
	SevenDayUtil     *float64   `parquet:"seven_day_util,optional,snappy"`
	SevenDayResetsAt *time.Time `parquet:"seven_day_resets_at,optional,snappy"`
}

// Rollup maps to the quotagraph_rollups database table.
type Rollup struct {
	Resolution  string    `parquet:"resolution,dict,snappy"`
	PeriodStart time.Time `parquet:"period_start,snappy"`
	PeriodEnd   time.Time `parquet:"period_end,snappy"`

	FiveHourPeak *float64 `parquet:"five_hour_peak,optional,snappy"`
	FiveHourMin  *float64 `parquet:"five_hour_min,optional,snappy"`
	FiveHourAvg  *float64 `parquet:"five_hour_avg,optional,snappy"`
	SevenDayPeak *float64 `parquet:"seven_day_peak,optional,snappy"`
	SevenDayMin  *float64 `parquet:"seven_day_min,optional,snappy"`
	SevenDayAvg  *float64 `parquet:"seven_day_avg,optional,snappy"`

	ResetCount  int32 `parquet:"reset_count,snappy"`
	SampleCount int32 `parquet:"sample_count,snappy"`
}

// Bucket is one bar of a usage bar chart.
type Bucket struct {
	PeriodStart  time.Time `parquet:"period_start,snappy"`
	PeriodEnd    time.Time `parquet:"period_end,snappy"`
	FiveHourPeak *float64  `parquet:"five_hour_peak,optional,snappy"`
	FiveHourAvg  *float64  `parquet:"five_hour_avg,optional,snappy"`
	SevenDayPeak *float64  `parquet:"seven_day_peak,optional,snappy"`
	SevenDayAvg  *float64  `parquet:"seven_day_avg,optional,snappy"`
	ResetCount   int32     `parquet:"reset_count,snappy"`
}

// ChartPoint is one vertex of a rendered path segment.
type ChartPoint struct {
	SegmentIndex int32   `parquet:"segment_index,snappy"`
	IsGap        bool    `parquet:"is_gap"`
	X            float64 `parquet:"x,snappy"`
	Y            float64 `parquet:"y,snappy"`
}

// writeRows writes all rows to a Parquet file whose schema is inferred from T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteReadingsParquet writes raw readings to a Parquet file.
func WriteReadingsParquet(data []Reading, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRollupsParquet writes rollup rows to a Parquet file.
func WriteRollupsParquet(data []Rollup, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteBucketsParquet writes bar buckets to a Parquet file.
func WriteBucketsParquet(data []Bucket, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteChartPointsParquet writes flattened chart vertices to a Parquet file.
func WriteChartPointsParquet(data []ChartPoint, outputPath string) error {
	return writeRows(data, outputPath)
}

func msTime(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func msTimePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := msTime(*ms)
	return &t
}

// ConvertReadings converts schema readings into Parquet rows.
func ConvertReadings(readings []schema.Reading) []Reading {
	result := make([]Reading, len(readings))
	for i, r := range readings {
		result[i] = Reading{
			Timestamp:        msTime(r.Timestamp),
			FiveHourUtil:     r.FiveHourUtil,
			FiveHourResetsAt: msTimePtr(r.FiveHourResetsAt),
			SevenDayUtil:     r.SevenDayUtil,
			SevenDayResetsAt: msTimePtr(r.SevenDayResetsAt),
		}
	}
	return result
}

// ConvertRollups converts schema rollups into Parquet rows.
func ConvertRollups(rollups []schema.Rollup) []Rollup {
	result := make([]Rollup, len(rollups))
	for i, r := range rollups {
		result[i] = Rollup{
			Resolution:   string(r.Resolution),
			PeriodStart:  msTime(r.PeriodStart),
			PeriodEnd:    msTime(r.PeriodEnd),
			FiveHourPeak: r.FiveHourPeak,
			FiveHourMin:  r.FiveHourMin,
			FiveHourAvg:  r.FiveHourAvg,
			SevenDayPeak: r.SevenDayPeak,
			SevenDayMin:  r.SevenDayMin,
			SevenDayAvg:  r.SevenDayAvg,
			ResetCount:   int32(r.ResetCount),
			SampleCount:  int32(r.SampleCount),
		}
	}
	return result
}

// ConvertBuckets converts bar buckets into Parquet rows.
func ConvertBuckets(buckets []schema.Bucket) []Bucket {
	result := make([]Bucket, len(buckets))
	for i, b := range buckets {
		result[i] = Bucket{
			PeriodStart:  msTime(b.PeriodStart),
			PeriodEnd:    msTime(b.PeriodEnd),
			FiveHourPeak: b.FiveHourPeak,
			FiveHourAvg:  b.FiveHourAvg,
			SevenDayPeak: b.SevenDayPeak,
			SevenDayAvg:  b.SevenDayAvg,
			ResetCount:   int32(b.ResetCount),
		}
	}
	return result
}

// ConvertSegments flattens path segments into one row per vertex.
func ConvertSegments(segments []schema.PathSegment) []ChartPoint {
	var result []ChartPoint
	for i, seg := range segments {
		for _, p := range seg.Points {
			result = append(result, ChartPoint{SegmentIndex: int32(i), IsGap: seg.IsGap, X: p.X, Y: p.Y})
		}
	}
	return result
}
