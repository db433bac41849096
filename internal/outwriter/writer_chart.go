package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeChartCSV writes one row per chart vertex.
func writeChartCSV(w io.Writer, result *schema.ChartResult, fmtFloat func(float64) string) error {
	header := []string{"segment", "is_gap", "start", "end", "x", "y"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, seg := range result.Segments {
			for _, p := range seg.Points {
				row := []string{
					strconv.Itoa(i),
					strconv.FormatBool(seg.IsGap),
					strconv.FormatInt(seg.StartMs, 10),
					strconv.FormatInt(seg.EndMs, 10),
					fmtFloat(p.X),
					fmtFloat(p.Y),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// segmentPeak converts the topmost vertex of a segment back into utilization.
func segmentPeak(seg schema.PathSegment, height float64) float64 {
	if height <= 0 || len(seg.Points) == 0 {
		return 0
	}
	minY := seg.Points[0].Y
	for _, p := range seg.Points[1:] {
		minY = min(minY, p.Y)
	}
	return (height - minY) / height * 100
}

// formatSpan renders a duration the way humans read elapsed time.
func formatSpan(ms int64) string {
	if ms <= 0 {
		return "0s"
	}
	ref := time.Unix(0, 0)
	return humanize.CustomRelTime(ref, ref.Add(time.Duration(ms)*time.Millisecond), "", "", spanMagnitudes)
}

// spanMagnitudes drops the "now" and "ago" phrasing used for timestamps.
var spanMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "%d seconds", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute", DivBy: 1},
	{D: time.Hour, Format: "%d minutes", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour", DivBy: 1},
	{D: humanize.Day, Format: "%d hours", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day", DivBy: 1},
	{D: humanize.LongTime, Format: "%d days", DivBy: humanize.Day},
}

// writeChartTable prints one row per segment and a headroom summary.
func writeChartTable(w io.Writer, result *schema.ChartResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	_, _ = fmt.Fprintf(w, "%s window, %s\n", result.Window.Label(), result.Range)
	if len(result.Segments) == 0 {
		_, _ = fmt.Fprintln(w, "Not enough data to draw a chart yet.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Kind", "Start", "End", "Span", "Samples", "Peak", "Trend"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	var data [][]string
	for i, seg := range result.Segments {
		kind, peak, trend := "data", fmtFloat(segmentPeak(seg, result.Height)), "-"
		if seg.IsGap {
			kind, peak = "gap", "-"
		} else if len(seg.Slopes) > 0 {
			trend = contract.GetTrendLabel(seg.Slopes[len(seg.Slopes)-1], cfg.UseColors)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			kind,
			time.UnixMilli(seg.StartMs).In(loc).Format("01-02 15:04"),
			time.UnixMilli(seg.EndMs).In(loc).Format("01-02 15:04"),
			formatSpan(seg.DurationMs),
			strconv.Itoa(seg.SampleCount),
			peak,
			trend,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if result.Latest != nil {
		label := contract.GetPlainLabel(*result.Latest)
		if cfg.UseColors {
			label = contract.GetColorLabel(*result.Latest)
		}
		_, _ = fmt.Fprintf(w, "Latest: %s%% used, headroom %s, trend %s\n",
			fmtFloat(*result.Latest), label, contract.GetTrendLabel(result.Trend, cfg.UseColors))
	}
	_, _ = fmt.Fprintf(w, "Chart built in %v. Gap threshold: %s. History backend: %s\n",
		duration.Round(time.Millisecond), formatSpan(result.GapThresholdMs), cfg.HistoryBackend)
	return nil
}
