package schema

// Sample is a single utilization reading for one quota window.
// Utilization and WindowResetAt are nil when the source did not report them.
type Sample struct {
	Timestamp     int64    `json:"timestamp"` // epoch milliseconds
	Utilization   *float64 `json:"utilization,omitempty"`
	WindowResetAt *int64   `json:"window_reset_at,omitempty"` // epoch milliseconds
}

// Reading is one poll of the usage API as persisted by the history store.
// It carries both windows and projects to a Sample per window.
type Reading struct {
	Timestamp        int64    `json:"timestamp"`
	FiveHourUtil     *float64 `json:"five_hour_utilization,omitempty"`
	FiveHourResetsAt *int64   `json:"five_hour_resets_at,omitempty"`
	SevenDayUtil     *float64 `json:"seven_day_utilization,omitempty"`
	SevenDayResetsAt *int64   `json:"seven_day_resets_at,omitempty"`
}

// SampleFor projects the reading onto a single window.
func (r Reading) SampleFor(w Window) Sample {
	switch w {
	case FiveHourWindow:
		return Sample{Timestamp: r.Timestamp, Utilization: r.FiveHourUtil, WindowResetAt: r.FiveHourResetsAt}
	case SevenDayWindow:
		return Sample{Timestamp: r.Timestamp, Utilization: r.SevenDayUtil, WindowResetAt: r.SevenDayResetsAt}
	}
	panic(&UnknownEnumError{Kind: "window", Value: string(w)})
}

// SamplesFor projects a slice of readings onto a single window.
func SamplesFor(readings []Reading, w Window) []Sample {
	out := make([]Sample, len(readings))
	for i, r := range readings {
		out[i] = r.SampleFor(w)
	}
	return out
}

// Point is a chart coordinate in display space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathSegment is a run of step-rendered data or a gap between runs.
type PathSegment struct {
	Points      []Point      `json:"points"`
	IsGap       bool         `json:"is_gap"`
	SampleCount int          `json:"sample_count"`
	DurationMs  int64        `json:"duration_ms"`
	StartMs     int64        `json:"start_ms"`
	EndMs       int64        `json:"end_ms"`
	Slopes      []SlopeLevel `json:"slopes,omitempty"` // one per sample, data segments only
}

// ChartResult is the line-chart output for one window and range.
type ChartResult struct {
	Window         Window        `json:"window"`
	Range          TimeRange     `json:"range"`
	RangeStartMs   int64         `json:"range_start_ms"`
	RangeEndMs     int64         `json:"range_end_ms"`
	Width          float64       `json:"width"`
	Height         float64       `json:"height"`
	GapThresholdMs int64         `json:"gap_threshold_ms"`
	Segments       []PathSegment `json:"segments"`
	Latest         *float64      `json:"latest_utilization,omitempty"`
	Headroom       HeadroomState `json:"headroom,omitempty"`
	Trend          SlopeLevel    `json:"trend,omitempty"`
}

// DataSegments returns the number of non-gap segments.
func (c ChartResult) DataSegments() int {
	n := 0
	for _, s := range c.Segments {
		if !s.IsGap {
			n++
		}
	}
	return n
}
