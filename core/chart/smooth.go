package chart

// Smooth returns the running maximum of values. It must only be applied within
// a single data segment so that true resets are preserved.
func Smooth(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i > 0 && out[i-1] > v {
			v = out[i-1]
		}
		out[i] = v
	}
	return out
}

// smoothSegment fills seg.Values with the smoothed utilization of its samples.
func smoothSegment(seg *RawSegment) {
	raw := make([]float64, len(seg.Samples))
	for i, s := range seg.Samples {
		raw[i] = *s.Utilization
	}
	seg.Values = Smooth(raw)
}
