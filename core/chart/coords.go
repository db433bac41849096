package chart

// XPosition maps a timestamp onto [0, width] proportionally within [start, end].
// Out-of-range timestamps are clamped; an empty range maps everything to 0.
func XPosition(ts, start, end int64, width float64) float64 {
	if end <= start {
		return 0
	}
	frac := float64(ts-start) / float64(end-start)
	return clamp(frac, 0, 1) * width
}

// YPosition maps a utilization percentage onto [height, 0], 100% at the top.
func YPosition(utilization, height float64) float64 {
	return height - clamp(utilization, 0, 100)/100*height
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
