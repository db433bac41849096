package history

import (
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/quotagraph/schema"
)

// PrintHistoryStatus prints history store status information.
func PrintHistoryStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d", status.SchemaVersion)
	if status.SchemaIsDirty {
		_, _ = fmt.Fprint(w, " (dirty)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Total Readings: %s\n", humanize.Comma(int64(status.TotalReadings)))
	if status.TotalReadings > 0 {
		_, _ = fmt.Fprintf(w, "Latest Reading: %s (%s)\n", status.LatestReading.Format("2006-01-02 15:04:05"), humanize.Time(status.LatestReading))
		_, _ = fmt.Fprintf(w, "Oldest Reading: %s (%s)\n", status.OldestReading.Format("2006-01-02 15:04:05"), humanize.Time(status.OldestReading))
	}
	if len(status.RollupCounts) > 0 {
		_, _ = fmt.Fprintln(w, "Rollups:")
		resolutions := make([]schema.Resolution, 0, len(status.RollupCounts))
		for res := range status.RollupCounts {
			resolutions = append(resolutions, res)
		}
		slices.SortFunc(resolutions, func(a, b schema.Resolution) int { return rankOf(a) - rankOf(b) })
		for _, res := range resolutions {
			_, _ = fmt.Fprintf(w, "  %s: %s rows\n", res, humanize.Comma(int64(status.RollupCounts[res])))
		}
	}
	_, _ = fmt.Fprintf(w, "Table Size: %s\n", humanize.Bytes(uint64(max(status.TableSizeBytes, 0))))
}

// rankOf orders known resolutions and sorts unknown ones last.
func rankOf(res schema.Resolution) int {
	if _, err := schema.ParseResolution(string(res)); err != nil {
		return len(schema.AllResolutions)
	}
	return res.Rank()
}
