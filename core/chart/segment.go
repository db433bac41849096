package chart

import (
	"math"

	"github.com/huangsam/quotagraph/schema"
)

// RawSegment is a run of valid samples, or a gap, before coordinate mapping.
// A data segment's EndMs may extend past its last sample when it was closed
// by a reset: the last value is held until the next reading.
type RawSegment struct {
	Samples []schema.Sample
	Values  []float64 // smoothed utilization, parallel to Samples
	Slopes  []schema.SlopeLevel
	IsGap   bool
	StartMs int64
	EndMs   int64
}

// DurationMs returns the covered time span.
func (s RawSegment) DurationMs() int64 {
	return s.EndMs - s.StartMs
}

// ValidSamples drops samples with a missing or out-of-range utilization.
func ValidSamples(samples []schema.Sample) []schema.Sample {
	out := make([]schema.Sample, 0, len(samples))
	for _, s := range samples {
		if s.Utilization == nil {
			continue
		}
		u := *s.Utilization
		if math.IsNaN(u) || u < 0 || u > 100 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Segment splits valid samples into alternating data and gap segments.
// A reset boundary is checked before the elapsed-time threshold and never
// produces a gap. It returns nil for fewer than two valid samples or a
// zero-duration span.
func Segment(samples []schema.Sample, gapThresholdMs int64, policy ResetPolicy) []RawSegment {
	valid := ValidSamples(samples)
	if len(valid) < 2 || valid[len(valid)-1].Timestamp == valid[0].Timestamp {
		return nil
	}

	var segments []RawSegment
	cur := RawSegment{Samples: []schema.Sample{valid[0]}, StartMs: valid[0].Timestamp}

	for i := 1; i < len(valid); i++ {
		prev, s := valid[i-1], valid[i]
		switch {
		case IsResetBoundary(prev, s, policy):
			cur.EndMs = s.Timestamp
			segments = append(segments, cur)
			cur = RawSegment{Samples: []schema.Sample{s}, StartMs: s.Timestamp}
		case s.Timestamp-prev.Timestamp > gapThresholdMs:
			cur.EndMs = prev.Timestamp
			segments = append(segments,
				cur,
				RawSegment{IsGap: true, StartMs: prev.Timestamp, EndMs: s.Timestamp},
			)
			cur = RawSegment{Samples: []schema.Sample{s}, StartMs: s.Timestamp}
		default:
			cur.Samples = append(cur.Samples, s)
		}
	}
	cur.EndMs = valid[len(valid)-1].Timestamp
	return append(segments, cur)
}
