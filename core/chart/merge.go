package chart

// MergeShortSegments turns isolated short data segments into gaps and then
// collapses each run of adjacent gaps into one gap spanning the run.
// A short segment is isolated only when both neighbours are gaps, so the first
// and last segments are always kept.
func MergeShortSegments(segments []RawSegment, minDurationMs int64) []RawSegment {
	if len(segments) < 3 {
		return segments
	}

	converted := make([]RawSegment, len(segments))
	copy(converted, segments)
	for i := 1; i < len(segments)-1; i++ {
		s := segments[i]
		if s.IsGap || s.DurationMs() >= minDurationMs {
			continue
		}
		if segments[i-1].IsGap && segments[i+1].IsGap {
			converted[i] = RawSegment{IsGap: true, StartMs: s.StartMs, EndMs: s.EndMs}
		}
	}

	merged := make([]RawSegment, 0, len(converted))
	for _, s := range converted {
		if n := len(merged); n > 0 && s.IsGap && merged[n-1].IsGap {
			merged[n-1].StartMs = min(merged[n-1].StartMs, s.StartMs)
			merged[n-1].EndMs = max(merged[n-1].EndMs, s.EndMs)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
