package schema

// Rollup is a pre-aggregated summary row substituting for raw samples.
type Rollup struct {
	PeriodStart  int64      `json:"period_start"`
	PeriodEnd    int64      `json:"period_end"`
	Resolution   Resolution `json:"resolution"`
	FiveHourPeak *float64   `json:"five_hour_peak,omitempty"`
	FiveHourMin  *float64   `json:"five_hour_min,omitempty"`
	FiveHourAvg  *float64   `json:"five_hour_avg,omitempty"`
	SevenDayPeak *float64   `json:"seven_day_peak,omitempty"`
	SevenDayMin  *float64   `json:"seven_day_min,omitempty"`
	SevenDayAvg  *float64   `json:"seven_day_avg,omitempty"`
	ResetCount   int        `json:"reset_count"`
	SampleCount  int        `json:"sample_count"`
}

// Bucket is one populated calendar period of a bar chart.
type Bucket struct {
	PeriodStart  int64    `json:"period_start"`
	PeriodEnd    int64    `json:"period_end"`
	FiveHourPeak *float64 `json:"five_hour_peak,omitempty"`
	FiveHourMin  *float64 `json:"five_hour_min,omitempty"`
	FiveHourAvg  *float64 `json:"five_hour_avg,omitempty"`
	SevenDayPeak *float64 `json:"seven_day_peak,omitempty"`
	SevenDayMin  *float64 `json:"seven_day_min,omitempty"`
	SevenDayAvg  *float64 `json:"seven_day_avg,omitempty"`
	ResetCount   int      `json:"reset_count"`
}

// Peak returns the peak for the given window.
func (b Bucket) Peak(w Window) *float64 {
	switch w {
	case FiveHourWindow:
		return b.FiveHourPeak
	case SevenDayWindow:
		return b.SevenDayPeak
	}
	panic(&UnknownEnumError{Kind: "window", Value: string(w)})
}

// GapRange is a run of missing buckets, aligned to bucket edges.
type GapRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// BarResult is the bar-chart output for one range.
type BarResult struct {
	Range      TimeRange  `json:"range"`
	Resolution Resolution `json:"resolution"`
	Source     Resolution `json:"source"` // resolution of the rows that were aggregated
	Buckets    []Bucket   `json:"buckets"`
	Gaps       []GapRange `json:"gaps"`
}
