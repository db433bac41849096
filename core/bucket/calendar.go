// Package bucket groups samples and rollups into calendar-aligned buckets for bar charts.
package bucket

import (
	"time"

	"github.com/huangsam/quotagraph/schema"
)

// PeriodStart returns the start of the calendar period containing ts.
// Five-minute and hourly periods align to the wall clock of loc at the
// offset in effect for ts, daily periods to local midnight. Raw resolution returns ts unchanged.
func PeriodStart(ts int64, res schema.Resolution, loc *time.Location) int64 {
	t := time.UnixMilli(ts).In(loc)
	switch res {
	case schema.RawResolution:
		return ts
	case schema.FiveMinuteResolution, schema.HourlyResolution:
		// Floor the instant shifted by its own offset so repeated wall-clock
		// hours stay distinct periods.
		_, offset := t.Zone()
		shift := int64(offset) * 1000
		period := res.Period().Milliseconds()
		local := ts + shift
		floored := local - local%period
		if local < 0 && local%period != 0 {
			floored -= period
		}
		return floored - shift
	case schema.DailyResolution:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).UnixMilli()
	}
	panic(&schema.UnknownEnumError{Kind: "resolution", Value: string(res)})
}

// PeriodEnd returns the exclusive end of the period starting at start,
// which is also the start of the next period.
func PeriodEnd(start int64, res schema.Resolution, loc *time.Location) int64 {
	switch res {
	case schema.RawResolution:
		return start
	case schema.FiveMinuteResolution, schema.HourlyResolution:
		return start + res.Period().Milliseconds()
	case schema.DailyResolution:
		t := time.UnixMilli(start).In(loc)
		return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc).UnixMilli()
	}
	panic(&schema.UnknownEnumError{Kind: "resolution", Value: string(res)})
}
