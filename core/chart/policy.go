// Package chart turns ordered utilization samples into step-area line-chart geometry.
package chart

import "github.com/huangsam/quotagraph/schema"

// Tunable heuristics for reset and gap detection. The jitter tolerance and drop
// fraction were tuned against one usage API's reset-timestamp jitter.
const (
	DefaultJitterToleranceMs = int64(60_000)
	DefaultDropFraction      = 0.5
	MinGapThresholdMs        = int64(5 * 60_000)
	DefaultMinSegmentMs      = int64(5 * 60_000)
	DefaultSlopeWindowMs     = int64(10 * 60_000)
	DefaultRisingPerMinute   = 0.5
	DefaultSteepPerMinute    = 1.5
)

// ResetPolicy decides when two consecutive samples straddle a window reset.
type ResetPolicy struct {
	JitterToleranceMs int64   // reset timestamp changes beyond this are resets
	DropFraction      float64 // fallback when no reset timestamp is known
}

// DefaultResetPolicy returns the policy used when none is configured.
func DefaultResetPolicy() ResetPolicy {
	return ResetPolicy{JitterToleranceMs: DefaultJitterToleranceMs, DropFraction: DefaultDropFraction}
}

// SlopePolicy buckets a %/minute rate into a schema.SlopeLevel.
// Rates below RisingPerMinute are flat, rates above SteepPerMinute are steep.
type SlopePolicy struct {
	WindowMs        int64
	RisingPerMinute float64
	SteepPerMinute  float64
}

// DefaultSlopePolicy returns the policy used when none is configured.
func DefaultSlopePolicy() SlopePolicy {
	return SlopePolicy{
		WindowMs:        DefaultSlopeWindowMs,
		RisingPerMinute: DefaultRisingPerMinute,
		SteepPerMinute:  DefaultSteepPerMinute,
	}
}

// Level maps a rate of change in %/minute to a slope level.
func (p SlopePolicy) Level(ratePerMinute float64) schema.SlopeLevel {
	switch {
	case ratePerMinute > p.SteepPerMinute:
		return schema.SlopeSteep
	case ratePerMinute >= p.RisingPerMinute:
		return schema.SlopeRising
	default:
		return schema.SlopeFlat
	}
}

// GapThresholdMs returns the elapsed time between readings beyond which the
// chart shows a gap: 1.5 poll intervals, never less than five minutes.
func GapThresholdMs(pollIntervalSec int) int64 {
	return max(MinGapThresholdMs, int64(pollIntervalSec)*1500)
}

// IsResetBoundary reports whether cur starts a new quota window relative to prev.
// When both samples carry a reset timestamp, only a move beyond the jitter
// tolerance counts. Otherwise a drop of more than DropFraction of prev counts.
func IsResetBoundary(prev, cur schema.Sample, policy ResetPolicy) bool {
	if prev.WindowResetAt != nil && cur.WindowResetAt != nil {
		delta := *cur.WindowResetAt - *prev.WindowResetAt
		if delta < 0 {
			delta = -delta
		}
		return delta > policy.JitterToleranceMs
	}
	if prev.Utilization == nil || cur.Utilization == nil {
		return false
	}
	p, c := *prev.Utilization, *cur.Utilization
	if p <= 0 {
		return false
	}
	return p-c > p*policy.DropFraction
}
