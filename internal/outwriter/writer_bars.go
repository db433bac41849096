package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeBarsCSV writes one row per populated bucket.
func writeBarsCSV(w io.Writer, result *schema.BarResult, fmtOptional func(*float64) string) error {
	header := []string{
		"period_start", "period_end",
		"five_hour_peak", "five_hour_min", "five_hour_avg",
		"seven_day_peak", "seven_day_min", "seven_day_avg",
		"reset_count",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, b := range result.Buckets {
			row := []string{
				strconv.FormatInt(b.PeriodStart, 10),
				strconv.FormatInt(b.PeriodEnd, 10),
				fmtOptional(b.FiveHourPeak),
				fmtOptional(b.FiveHourMin),
				fmtOptional(b.FiveHourAvg),
				fmtOptional(b.SevenDayPeak),
				fmtOptional(b.SevenDayMin),
				fmtOptional(b.SevenDayAvg),
				strconv.Itoa(b.ResetCount),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// periodLayout picks a timestamp layout fine enough to tell buckets apart.
func periodLayout(res schema.Resolution) string {
	switch res {
	case schema.DailyResolution:
		return "2006-01-02"
	case schema.HourlyResolution:
		return "01-02 15:00"
	case schema.FiveMinuteResolution, schema.RawResolution:
		return "01-02 15:04"
	}
	return time.RFC3339
}

// renderBar draws a horizontal bar for a utilization percentage.
func renderBar(util *float64, maxWidth int) string {
	if util == nil {
		return ""
	}
	v := min(max(*util, 0), 100)
	n := int(v / 100 * float64(maxWidth))
	return strings.Repeat("█", n) + strings.Repeat("░", maxWidth-n)
}

// writeBarsTable prints one row per bucket followed by the missing ranges.
func writeBarsTable(w io.Writer, result *schema.BarResult, cfg *contract.Config, fmtOptional func(*float64) string, maxBarWidth int, duration time.Duration) error {
	_, _ = fmt.Fprintf(w, "%s bars, %s\n", result.Resolution, result.Range)
	if len(result.Buckets) == 0 {
		_, _ = fmt.Fprintln(w, "No usage recorded in this range.")
		return nil
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	layout := periodLayout(result.Resolution)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Period", "5h Peak", "7d Peak", "Resets", "5h Usage"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, b := range result.Buckets {
		peak := fmtOptional(b.FiveHourPeak)
		if cfg.UseColors && b.FiveHourPeak != nil {
			peak = contract.GetColorLabel(*b.FiveHourPeak) + " " + peak
		}
		data = append(data, []string{
			time.UnixMilli(b.PeriodStart).In(loc).Format(layout),
			peak,
			fmtOptional(b.SevenDayPeak),
			strconv.Itoa(b.ResetCount),
			renderBar(b.FiveHourPeak, maxBarWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(result.Gaps) > 0 {
		_, _ = fmt.Fprintf(w, "Missing %d range(s):\n", len(result.Gaps))
		for _, g := range result.Gaps {
			_, _ = fmt.Fprintf(w, "  %s to %s (%s)\n",
				time.UnixMilli(g.Start).In(loc).Format(layout),
				time.UnixMilli(g.End).In(loc).Format(layout),
				formatSpan(g.End-g.Start))
		}
	}
	_, _ = fmt.Fprintf(w, "Aggregated %s buckets from %s rows in %v, latest period %s.\n",
		humanize.Comma(int64(len(result.Buckets))), result.Source,
		duration.Round(time.Millisecond),
		humanize.Time(time.UnixMilli(result.Buckets[len(result.Buckets)-1].PeriodStart)))
	return nil
}
