package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

const t0 = int64(1_700_000_000_000)

func sampleChart() *schema.ChartResult {
	return &schema.ChartResult{
		Window: schema.FiveHourWindow,
		Range:  schema.Last24Hours,
		Width:  600, Height: 200,
		GapThresholdMs: 180_000,
		Segments: []schema.PathSegment{
			{
				Points:      []schema.Point{{X: 0, Y: 180}, {X: 10, Y: 180}, {X: 10, Y: 100}, {X: 20, Y: 100}},
				SampleCount: 2, StartMs: t0, EndMs: t0 + 60_000, DurationMs: 60_000,
				Slopes: []schema.SlopeLevel{schema.SlopeFlat, schema.SlopeSteep},
			},
			{
				Points: []schema.Point{{X: 20, Y: 200}, {X: 40, Y: 200}},
				IsGap:  true, StartMs: t0 + 60_000, EndMs: t0 + 3*3_600_000, DurationMs: 3*3_600_000 - 60_000,
			},
		},
		Latest:   f64(50),
		Headroom: schema.HeadroomHealthy,
		Trend:    schema.SlopeSteep,
	}
}

func sampleBars() *schema.BarResult {
	return &schema.BarResult{
		Range:      schema.Last7Days,
		Resolution: schema.HourlyResolution,
		Source:     schema.RawResolution,
		Buckets: []schema.Bucket{
			{PeriodStart: t0, PeriodEnd: t0 + 3_600_000, FiveHourPeak: f64(42), SevenDayPeak: f64(12.25), ResetCount: 1},
			{PeriodStart: t0 + 3*3_600_000, PeriodEnd: t0 + 4*3_600_000, FiveHourPeak: f64(100)},
		},
		Gaps: []schema.GapRange{{Start: t0 + 3_600_000, End: t0 + 3*3_600_000}},
	}
}

func TestWriteChartCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeChartCSV(&buf, sampleChart(), fmtFloat))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, []string{"segment", "is_gap", "start", "end", "x", "y"}, records[0])
	assert.Equal(t, []string{"0", "false", "1700000000000", "1700000060000", "0.0", "180.0"}, records[1])
	assert.Equal(t, "1", records[5][0])
	assert.Equal(t, "true", records[5][1])
}

func TestWriteChartTable(t *testing.T) {
	cfg := &contract.Config{Precision: 1, Location: time.UTC, HistoryBackend: schema.SQLiteBackend}
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeChartTable(&buf, sampleChart(), cfg, fmtFloat, 5*time.Millisecond))

	output := buf.String()
	assert.Contains(t, output, "last_24h")
	assert.Contains(t, output, "gap")
	assert.Contains(t, output, "50.0")
	assert.Contains(t, output, "steep ⇑")
	assert.Contains(t, output, "Latest: 50.0% used, headroom Healthy")
	assert.Contains(t, output, "Gap threshold: 3 minutes")
}

func TestWriteChartTable_Empty(t *testing.T) {
	cfg := &contract.Config{Precision: 1, Location: time.UTC}
	fmtFloat, _ := createFormatters(cfg.Precision)
	result := &schema.ChartResult{Window: schema.SevenDayWindow, Range: schema.AllTime}

	var buf bytes.Buffer
	require.NoError(t, writeChartTable(&buf, result, cfg, fmtFloat, time.Millisecond))
	assert.Contains(t, buf.String(), "Not enough data")
}

func TestSegmentPeak(t *testing.T) {
	seg := schema.PathSegment{Points: []schema.Point{{Y: 150}, {Y: 50}, {Y: 120}}}
	assert.InDelta(t, 75.0, segmentPeak(seg, 200), 1e-9)
	assert.Zero(t, segmentPeak(seg, 0))
	assert.Zero(t, segmentPeak(schema.PathSegment{}, 200))
}

func TestFormatSpan(t *testing.T) {
	tests := []struct {
		ms       int64
		expected string
	}{
		{0, "0s"},
		{30_000, "30 seconds"},
		{5 * 60_000, "5 minutes"},
		{3 * 3_600_000, "3 hours"},
		{3 * 24 * 3_600_000, "3 days"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSpan(tt.ms))
		})
	}
}

func TestWriteBarsCSV(t *testing.T) {
	_, fmtOptional := createFormatters(2)
	var buf bytes.Buffer
	require.NoError(t, writeBarsCSV(&buf, sampleBars(), fmtOptional))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "reset_count", records[0][8])
	assert.Equal(t, "42.00", records[1][2])
	assert.Equal(t, "", records[1][3])
	assert.Equal(t, "12.25", records[1][5])
	assert.Equal(t, "1", records[1][8])
	assert.Equal(t, "0", records[2][8])
}

func TestWriteBarsTable(t *testing.T) {
	cfg := &contract.Config{Precision: 1, Location: time.UTC}
	_, fmtOptional := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeBarsTable(&buf, sampleBars(), cfg, fmtOptional, 10, time.Millisecond))

	output := buf.String()
	assert.Contains(t, output, "hourly bars, last_7d")
	assert.Contains(t, output, "11-14 22:00")
	assert.Contains(t, output, "42.0")
	assert.Contains(t, output, "12.2") // rounded to precision
	assert.Contains(t, output, strings.Repeat("█", 10))
	assert.Contains(t, output, "████░░░░░░")
	assert.Contains(t, output, "Missing 1 range(s)")
	assert.Contains(t, output, "(2 hours)")
}

func TestWriteBarsTable_Empty(t *testing.T) {
	cfg := &contract.Config{Precision: 1, Location: time.UTC}
	_, fmtOptional := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeBarsTable(&buf, &schema.BarResult{Resolution: schema.DailyResolution}, cfg, fmtOptional, 10, 0))
	assert.Contains(t, buf.String(), "No usage recorded")
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "", renderBar(nil, 10))
	assert.Equal(t, "░░░░░░░░░░", renderBar(f64(-5), 10))
	assert.Equal(t, "█████░░░░░", renderBar(f64(50), 10))
	assert.Equal(t, "██████████", renderBar(f64(130), 10))
}

func TestPeriodLayout(t *testing.T) {
	for _, res := range schema.AllResolutions {
		assert.NotEmpty(t, periodLayout(res))
	}
	assert.Equal(t, "2006-01-02", periodLayout(schema.DailyResolution))
}

func TestPrintChartResult_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 1}
	require.NoError(t, PrintChartResult(sampleChart(), cfg, time.Millisecond))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got schema.ChartResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, schema.FiveHourWindow, got.Window)
	assert.Len(t, got.Segments, 2)
	assert.True(t, got.Segments[1].IsGap)
}

func TestPrintBarResult_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 1}
	require.NoError(t, PrintBarResult(sampleBars(), cfg, time.Millisecond))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
}

func TestPrintResults_Parquet(t *testing.T) {
	dir := t.TempDir()
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "chart.parquet"), Precision: 1}
	require.NoError(t, PrintChartResult(sampleChart(), cfg, 0))
	assert.FileExists(t, cfg.OutputFile)

	cfg.OutputFile = filepath.Join(dir, "bars.parquet")
	require.NoError(t, PrintBarResult(sampleBars(), cfg, 0))
	assert.FileExists(t, cfg.OutputFile)
}

func TestGetMaxBarWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{40, 10},
		{100, 40},
		{200, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxBarWidth(&contract.Config{TermWidth: tt.width}))
	}
}
