package chart

import (
	"math"
	"testing"

	"github.com/huangsam/quotagraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSamples(t *testing.T) {
	samples := []schema.Sample{
		sample(baseMs, 10, 0),
		{Timestamp: baseMs + 1},
		sample(baseMs+2, -1, 0),
		sample(baseMs+3, 100.5, 0),
		sample(baseMs+4, math.NaN(), 0),
		sample(baseMs+5, 100, 0),
	}
	valid := ValidSamples(samples)
	require.Len(t, valid, 2)
	assert.Equal(t, baseMs, valid[0].Timestamp)
	assert.Equal(t, baseMs+5, valid[1].Timestamp)
}

func TestSegment_Degenerate(t *testing.T) {
	th := GapThresholdMs(30)
	policy := DefaultResetPolicy()

	assert.Nil(t, Segment(nil, th, policy))
	assert.Nil(t, Segment([]schema.Sample{sample(baseMs, 10, 0)}, th, policy))
	assert.Nil(t, Segment([]schema.Sample{sample(baseMs, 10, 0), sample(baseMs, 12, 0)}, th, policy))
	assert.Nil(t, Segment([]schema.Sample{sample(baseMs, 10, 0), {Timestamp: baseMs + 60_000}}, th, policy))
}

func TestSegment_InvalidSamplesDoNotForceGap(t *testing.T) {
	samples := []schema.Sample{
		sample(baseMs, 10, 0),
		{Timestamp: baseMs + 60_000},
		sample(baseMs+120_000, 11, 0),
		sample(baseMs+180_000, 250, 0),
		sample(baseMs+240_000, 12, 0),
	}
	segs := Segment(samples, GapThresholdMs(60), DefaultResetPolicy())
	require.Len(t, segs, 1)
	assert.False(t, segs[0].IsGap)
	assert.Len(t, segs[0].Samples, 3)
	assert.Equal(t, int64(240_000), segs[0].DurationMs())
}

func TestSegment_GapSplits(t *testing.T) {
	samples := append(
		series(baseMs, 5, 30_000, 10, 1, 0),
		series(baseMs+30*60_000, 5, 30_000, 15, 1, 0)...,
	)
	segs := Segment(samples, GapThresholdMs(30), DefaultResetPolicy())
	require.Len(t, segs, 3)

	assert.False(t, segs[0].IsGap)
	assert.True(t, segs[1].IsGap)
	assert.False(t, segs[2].IsGap)

	assert.Equal(t, segs[0].EndMs, segs[1].StartMs)
	assert.Equal(t, segs[1].EndMs, segs[2].StartMs)
	assert.Equal(t, baseMs+4*30_000, segs[1].StartMs)
	assert.Equal(t, baseMs+30*60_000, segs[1].EndMs)
}

func TestSegment_ResetSplitsWithoutGap(t *testing.T) {
	reset1 := baseMs + 3_600_000
	reset2 := reset1 + 5*3_600_000
	samples := append(
		series(baseMs, 4, 30_000, 80, 2, reset1),
		series(baseMs+4*30_000, 4, 30_000, 1, 1, reset2)...,
	)
	segs := Segment(samples, GapThresholdMs(30), DefaultResetPolicy())
	require.Len(t, segs, 2)
	assert.False(t, segs[0].IsGap)
	assert.False(t, segs[1].IsGap)
	// The pre-reset value is held until the first post-reset reading.
	assert.Equal(t, segs[1].StartMs, segs[0].EndMs)
	assert.Equal(t, baseMs+4*30_000, segs[0].EndMs)
}

func TestSegment_ResetTakesPrecedenceOverGap(t *testing.T) {
	samples := []schema.Sample{
		sample(baseMs, 90, 0),
		sample(baseMs+60_000, 92, 0),
		sample(baseMs+60*60_000, 3, 0), // long silence and a >50% drop
		sample(baseMs+61*60_000, 4, 0),
	}
	segs := Segment(samples, GapThresholdMs(30), DefaultResetPolicy())
	require.Len(t, segs, 2)
	assert.False(t, segs[0].IsGap)
	assert.False(t, segs[1].IsGap)
}

func TestSmooth(t *testing.T) {
	raw := []float64{10, 12, 11.5, 12, 15, 14.9, 15, 20}
	got := Smooth(raw)
	assert.Equal(t, []float64{10, 12, 12, 12, 15, 15, 15, 20}, got)

	runMax := math.Inf(-1)
	for i := range raw {
		runMax = math.Max(runMax, raw[i])
		assert.Equal(t, runMax, got[i])
		if i > 0 {
			assert.GreaterOrEqual(t, got[i], got[i-1])
		}
	}
	assert.Equal(t, 11.5, raw[2], "input must not be mutated")
	assert.Empty(t, Smooth(nil))
}

func TestClassifySlopes(t *testing.T) {
	policy := DefaultSlopePolicy()

	ts := []int64{0, 60_000, 120_000, 180_000, 240_000}
	flat := ClassifySlopes(ts, []float64{10, 10.1, 10.2, 10.3, 10.4}, policy)
	assert.Equal(t, []schema.SlopeLevel{schema.SlopeFlat, schema.SlopeFlat, schema.SlopeFlat, schema.SlopeFlat, schema.SlopeFlat}, flat)

	rising := ClassifySlopes(ts, []float64{10, 11, 12, 13, 14}, policy)
	assert.Equal(t, schema.SlopeFlat, rising[0], "no trailing history")
	assert.Equal(t, schema.SlopeRising, rising[4])

	steep := ClassifySlopes(ts, []float64{10, 13, 16, 19, 22}, policy)
	assert.Equal(t, schema.SlopeSteep, steep[4])
}

func TestClassifySlopes_TrailingWindowIsTimeBased(t *testing.T) {
	policy := SlopePolicy{WindowMs: 5 * 60_000, RisingPerMinute: 0.5, SteepPerMinute: 1.5}
	// A steep climb long ago falls out of the window; recent points are flat.
	ts := []int64{0, 60_000, 20 * 60_000, 21 * 60_000, 22 * 60_000}
	vals := []float64{0, 30, 30, 30, 30.1}
	got := ClassifySlopes(ts, vals, policy)
	assert.Equal(t, schema.SlopeSteep, got[1])
	assert.Equal(t, schema.SlopeFlat, got[2], "previous point is outside the window")
	assert.Equal(t, schema.SlopeFlat, got[4])
}
