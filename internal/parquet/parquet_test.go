package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/quotagraph/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestRowStructTags(t *testing.T) {
	tests := []struct {
		name    string
		row     any
		columns []string
	}{
		{"reading", new(Reading), []string{"timestamp", "five_hour_util", "five_hour_resets_at", "seven_day_util", "seven_day_resets_at"}},
		{"rollup", new(Rollup), []string{"resolution", "period_start", "period_end", "five_hour_peak", "seven_day_avg", "reset_count", "sample_count"}},
		{"bucket", new(Bucket), []string{"period_start", "period_end", "five_hour_peak", "seven_day_avg", "reset_count"}},
		{"chart point", new(ChartPoint), []string{"segment_index", "is_gap", "x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.row)
			require.NotNil(t, s)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestWriteReadingsParquet(t *testing.T) {
	readings := []schema.Reading{
		{Timestamp: 1_700_000_000_000, FiveHourUtil: f64(12.5), FiveHourResetsAt: i64(1_700_010_000_000)},
		{Timestamp: 1_700_000_060_000, SevenDayUtil: f64(40)},
	}
	path := filepath.Join(t.TempDir(), "readings.parquet")
	require.NoError(t, WriteReadingsParquet(ConvertReadings(readings), path))

	rows := readAll[Reading](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1_700_000_000_000), rows[0].Timestamp.UnixMilli())
	require.NotNil(t, rows[0].FiveHourUtil)
	assert.InDelta(t, 12.5, *rows[0].FiveHourUtil, 1e-9)
	require.NotNil(t, rows[0].FiveHourResetsAt)
	assert.Equal(t, int64(1_700_010_000_000), rows[0].FiveHourResetsAt.UnixMilli())
	assert.Nil(t, rows[0].SevenDayUtil)
	assert.Nil(t, rows[1].FiveHourUtil)
}

func TestWriteRollupsParquet(t *testing.T) {
	rollups := []schema.Rollup{{
		PeriodStart: 1_700_000_000_000, PeriodEnd: 1_700_003_600_000, Resolution: schema.HourlyResolution,
		FiveHourPeak: f64(80), FiveHourMin: f64(10), FiveHourAvg: f64(45), ResetCount: 1, SampleCount: 60,
	}}
	path := filepath.Join(t.TempDir(), "rollups.parquet")
	require.NoError(t, WriteRollupsParquet(ConvertRollups(rollups), path))

	rows := readAll[Rollup](t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, "hourly", rows[0].Resolution)
	assert.Equal(t, int32(60), rows[0].SampleCount)
	assert.Nil(t, rows[0].SevenDayPeak)
}

func TestWriteBucketsAndChartPoints(t *testing.T) {
	dir := t.TempDir()
	buckets := []schema.Bucket{{PeriodStart: 0, PeriodEnd: 300_000, FiveHourPeak: f64(5)}}
	require.NoError(t, WriteBucketsParquet(ConvertBuckets(buckets), filepath.Join(dir, "b.parquet")))
	assert.Len(t, readAll[Bucket](t, filepath.Join(dir, "b.parquet")), 1)

	segments := []schema.PathSegment{
		{Points: []schema.Point{{X: 0, Y: 100}, {X: 10, Y: 90}, {X: 20, Y: 90}}},
		{IsGap: true, Points: []schema.Point{{X: 20, Y: 100}, {X: 50, Y: 100}}},
	}
	points := ConvertSegments(segments)
	require.Len(t, points, 5)
	assert.Equal(t, int32(1), points[3].SegmentIndex)
	assert.True(t, points[4].IsGap)

	require.NoError(t, WriteChartPointsParquet(points, filepath.Join(dir, "c.parquet")))
	assert.Len(t, readAll[ChartPoint](t, filepath.Join(dir, "c.parquet")), 5)
}

func TestWriteParquetBadPath(t *testing.T) {
	err := WriteReadingsParquet(nil, filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.Error(t, err)
}
