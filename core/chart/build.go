package chart

import "github.com/huangsam/quotagraph/schema"

// Options configures one render pass of the line chart.
type Options struct {
	RangeStartMs    int64 // zero means the first valid sample
	RangeEndMs      int64 // zero means the last valid sample
	Width           float64
	Height          float64
	PollIntervalSec int
	MinSegmentMs    int64 // zero means DefaultMinSegmentMs
	Reset           ResetPolicy
	Slope           SlopePolicy
}

// DefaultOptions returns options for the given display size and poll interval.
func DefaultOptions(width, height float64, pollIntervalSec int) Options {
	return Options{
		Width:           width,
		Height:          height,
		PollIntervalSec: pollIntervalSec,
		MinSegmentMs:    DefaultMinSegmentMs,
		Reset:           DefaultResetPolicy(),
		Slope:           DefaultSlopePolicy(),
	}
}

// Prepare runs segmenting, smoothing, slope classification and short-segment
// merging, stopping short of coordinate mapping.
func Prepare(samples []schema.Sample, opts Options) []RawSegment {
	segments := Segment(samples, GapThresholdMs(opts.PollIntervalSec), opts.Reset)
	if segments == nil {
		return nil
	}
	for i := range segments {
		if segments[i].IsGap {
			continue
		}
		smoothSegment(&segments[i])
		classifySegment(&segments[i], opts.Slope)
	}
	minMs := opts.MinSegmentMs
	if minMs <= 0 {
		minMs = DefaultMinSegmentMs
	}
	return MergeShortSegments(segments, minMs)
}

// Build turns ordered samples into chart segments. It returns nil when there
// is nothing to draw, in which case the caller shows a placeholder.
func Build(samples []schema.Sample, opts Options) []schema.PathSegment {
	raw := Prepare(samples, opts)
	if raw == nil {
		return nil
	}

	start, end := opts.RangeStartMs, opts.RangeEndMs
	if start == 0 {
		start = raw[0].StartMs
	}
	if end == 0 {
		end = raw[len(raw)-1].EndMs
	}
	x := func(ts int64) float64 { return XPosition(ts, start, end, opts.Width) }
	y := func(u float64) float64 { return YPosition(u, opts.Height) }

	out := make([]schema.PathSegment, 0, len(raw))
	for _, seg := range raw {
		ps := schema.PathSegment{
			IsGap:       seg.IsGap,
			SampleCount: len(seg.Samples),
			DurationMs:  seg.DurationMs(),
			StartMs:     seg.StartMs,
			EndMs:       seg.EndMs,
		}
		if seg.IsGap {
			ps.Points = []schema.Point{
				{X: x(seg.StartMs), Y: opts.Height},
				{X: x(seg.EndMs), Y: opts.Height},
			}
		} else {
			ps.Points = stepPoints(seg, x, y)
			ps.Slopes = seg.Slopes
		}
		out = append(out, ps)
	}
	return out
}

// stepPoints renders a held-value step line: horizontal at the previous value
// to the new x, then vertical to the new value.
func stepPoints(seg RawSegment, x func(int64) float64, y func(float64) float64) []schema.Point {
	pts := make([]schema.Point, 0, 2*len(seg.Samples))
	for i, s := range seg.Samples {
		px := x(s.Timestamp)
		if i > 0 {
			pts = append(pts, schema.Point{X: px, Y: y(seg.Values[i-1])})
		}
		pts = append(pts, schema.Point{X: px, Y: y(seg.Values[i])})
	}
	last := seg.Samples[len(seg.Samples)-1].Timestamp
	if seg.EndMs > last {
		pts = append(pts, schema.Point{X: x(seg.EndMs), Y: y(seg.Values[len(seg.Values)-1])})
	}
	return pts
}

// LatestTrend returns the slope level at the newest sample, or flat.
func LatestTrend(segments []schema.PathSegment) schema.SlopeLevel {
	for i := len(segments) - 1; i >= 0; i-- {
		if s := segments[i]; !s.IsGap && len(s.Slopes) > 0 {
			return s.Slopes[len(s.Slopes)-1]
		}
	}
	return schema.SlopeFlat
}
