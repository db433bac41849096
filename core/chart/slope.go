package chart

import "github.com/huangsam/quotagraph/schema"

// ClassifySlopes returns a slope level per point of one data segment.
// The rate at point i is measured against the earliest earlier point that lies
// within the trailing window; without one the point is flat.
func ClassifySlopes(timestamps []int64, values []float64, policy SlopePolicy) []schema.SlopeLevel {
	levels := make([]schema.SlopeLevel, len(values))
	j := 0
	for i := range values {
		for j < i && timestamps[i]-timestamps[j] > policy.WindowMs {
			j++
		}
		elapsed := timestamps[i] - timestamps[j]
		if j == i || elapsed <= 0 {
			levels[i] = schema.SlopeFlat
			continue
		}
		rate := (values[i] - values[j]) / (float64(elapsed) / 60_000)
		levels[i] = policy.Level(rate)
	}
	return levels
}

// classifySegment fills seg.Slopes from its smoothed values.
func classifySegment(seg *RawSegment, policy SlopePolicy) {
	ts := make([]int64, len(seg.Samples))
	for i, s := range seg.Samples {
		ts[i] = s.Timestamp
	}
	seg.Slopes = ClassifySlopes(ts, seg.Values, policy)
}
