package schema

import (
	"strings"
	"time"
)

// ParseWindow converts user input into a Window.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	switch w {
	case FiveHourWindow, SevenDayWindow:
		return w, nil
	}
	return "", &UnknownEnumError{Kind: "window", Value: s}
}

// Label returns a short human label for the window.
func (w Window) Label() string {
	switch w {
	case FiveHourWindow:
		return "5-hour"
	case SevenDayWindow:
		return "7-day"
	}
	panic(&UnknownEnumError{Kind: "window", Value: string(w)})
}

// ParseResolution converts user input into a Resolution.
func ParseResolution(s string) (Resolution, error) {
	r := Resolution(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RawResolution, FiveMinuteResolution, HourlyResolution, DailyResolution:
		return r, nil
	}
	return "", &UnknownEnumError{Kind: "resolution", Value: s}
}

// Rank orders resolutions from finest (0) to coarsest.
func (r Resolution) Rank() int {
	switch r {
	case RawResolution:
		return 0
	case FiveMinuteResolution:
		return 1
	case HourlyResolution:
		return 2
	case DailyResolution:
		return 3
	}
	panic(&UnknownEnumError{Kind: "resolution", Value: string(r)})
}

// Period returns the nominal length of one period. Raw has no period.
// Daily periods may be 23 or 25 hours across DST changes; use calendar math
// for boundaries and this value only for sizing.
func (r Resolution) Period() time.Duration {
	switch r {
	case RawResolution:
		return 0
	case FiveMinuteResolution:
		return 5 * time.Minute
	case HourlyResolution:
		return time.Hour
	case DailyResolution:
		return 24 * time.Hour
	}
	panic(&UnknownEnumError{Kind: "resolution", Value: string(r)})
}

// CoarserThan reports whether r aggregates over longer periods than other.
func (r Resolution) CoarserThan(other Resolution) bool {
	return r.Rank() > other.Rank()
}

// ParseTimeRange converts user input into a TimeRange.
func ParseTimeRange(s string) (TimeRange, error) {
	tr := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	switch tr {
	case Last24Hours, Last7Days, Last30Days, AllTime:
		return tr, nil
	}
	return "", &UnknownEnumError{Kind: "time range", Value: s}
}

// Lookback returns how far back the range reaches. AllTime returns 0.
func (tr TimeRange) Lookback() time.Duration {
	switch tr {
	case Last24Hours:
		return 24 * time.Hour
	case Last7Days:
		return 7 * 24 * time.Hour
	case Last30Days:
		return 30 * 24 * time.Hour
	case AllTime:
		return 0
	}
	panic(&UnknownEnumError{Kind: "time range", Value: string(tr)})
}

// BarResolution returns the bucket resolution used for bar charts of this range.
func (tr TimeRange) BarResolution() Resolution {
	switch tr {
	case Last24Hours:
		return FiveMinuteResolution
	case Last7Days:
		return HourlyResolution
	case Last30Days, AllTime:
		return DailyResolution
	}
	panic(&UnknownEnumError{Kind: "time range", Value: string(tr)})
}

// Ordinal returns 0, 1 or 2 for flat, rising and steep.
func (s SlopeLevel) Ordinal() int {
	switch s {
	case SlopeFlat:
		return 0
	case SlopeRising:
		return 1
	case SlopeSteep:
		return 2
	}
	panic(&UnknownEnumError{Kind: "slope level", Value: string(s)})
}

// Headroom thresholds, in percent of quota remaining.
const (
	HealthyHeadroomAbove = 50.0
	CautionHeadroomAbove = 20.0
)

// ClassifyHeadroom maps a utilization percentage to a HeadroomState.
func ClassifyHeadroom(utilization float64) HeadroomState {
	headroom := 100 - utilization
	switch {
	case headroom > HealthyHeadroomAbove:
		return HeadroomHealthy
	case headroom > CautionHeadroomAbove:
		return HeadroomCaution
	case headroom > 0:
		return HeadroomCritical
	default:
		return HeadroomExhausted
	}
}

// Severity orders headroom states, 0 being healthy.
func (h HeadroomState) Severity() int {
	switch h {
	case HeadroomHealthy:
		return 0
	case HeadroomCaution:
		return 1
	case HeadroomCritical:
		return 2
	case HeadroomExhausted:
		return 3
	}
	panic(&UnknownEnumError{Kind: "headroom state", Value: string(h)})
}
