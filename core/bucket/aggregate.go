package bucket

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/huangsam/quotagraph/core/chart"
	"github.com/huangsam/quotagraph/schema"
)

// Range bounds the rows that are aggregated: [StartMs, EndMs).
// A zero bound is open.
type Range struct {
	StartMs int64
	EndMs   int64
}

// Contains reports whether ts falls inside the range.
func (r Range) Contains(ts int64) bool {
	if r.StartMs != 0 && ts < r.StartMs {
		return false
	}
	if r.EndMs != 0 && ts >= r.EndMs {
		return false
	}
	return true
}

// Overlaps reports whether [startMs, endMs) shares any instant with the range.
func (r Range) Overlaps(startMs, endMs int64) bool {
	if r.StartMs != 0 && endMs <= r.StartMs {
		return false
	}
	if r.EndMs != 0 && startMs >= r.EndMs {
		return false
	}
	return true
}

// Options configures an aggregation pass.
type Options struct {
	Resolution schema.Resolution
	Location   *time.Location // nil means time.Local
	Range      Range
	Reset      chart.ResetPolicy
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// stat accumulates one window of one period.
type stat struct {
	peak, min float64
	avgSum    float64
	avgN      int
	hasPeak   bool
	hasMin    bool
}

func (s *stat) add(peak, minV, avg *float64) {
	if peak != nil && (!s.hasPeak || *peak > s.peak) {
		s.peak, s.hasPeak = *peak, true
	}
	if minV != nil && (!s.hasMin || *minV < s.min) {
		s.min, s.hasMin = *minV, true
	}
	if avg != nil {
		s.avgSum += *avg
		s.avgN++
	}
}

// addWeighted folds in a rollup whose average covers n readings.
func (s *stat) addWeighted(peak, minV, avg *float64, n int) {
	if n < 1 {
		n = 1
	}
	s.add(peak, minV, nil)
	if avg != nil {
		s.avgSum += *avg * float64(n)
		s.avgN += n
	}
}

func (s *stat) result() (peak, minV, avg *float64) {
	if s.hasPeak {
		peak = ptr(s.peak)
	}
	if s.hasMin {
		minV = ptr(s.min)
	}
	if s.avgN > 0 {
		avg = ptr(s.avgSum / float64(s.avgN))
	}
	return peak, minV, avg
}

// acc accumulates one calendar period.
type acc struct {
	start, end int64
	fiveHour   stat
	sevenDay   stat
	resets     int
	samples    int
}

func (a *acc) bucket() schema.Bucket {
	b := schema.Bucket{PeriodStart: a.start, PeriodEnd: a.end, ResetCount: a.resets}
	b.FiveHourPeak, b.FiveHourMin, b.FiveHourAvg = a.fiveHour.result()
	b.SevenDayPeak, b.SevenDayMin, b.SevenDayAvg = a.sevenDay.result()
	return b
}

func (a *acc) rollup(res schema.Resolution) schema.Rollup {
	b := a.bucket()
	return schema.Rollup{
		PeriodStart:  b.PeriodStart,
		PeriodEnd:    b.PeriodEnd,
		Resolution:   res,
		FiveHourPeak: b.FiveHourPeak,
		FiveHourMin:  b.FiveHourMin,
		FiveHourAvg:  b.FiveHourAvg,
		SevenDayPeak: b.SevenDayPeak,
		SevenDayMin:  b.SevenDayMin,
		SevenDayAvg:  b.SevenDayAvg,
		ResetCount:   b.ResetCount,
		SampleCount:  a.samples,
	}
}

// grouper keeps accumulators keyed by period start.
type grouper struct {
	res  schema.Resolution
	loc  *time.Location
	accs map[int64]*acc
}

func newGrouper(res schema.Resolution, loc *time.Location) *grouper {
	return &grouper{res: res, loc: loc, accs: make(map[int64]*acc)}
}

func (g *grouper) at(ts int64) *acc {
	start := PeriodStart(ts, g.res, g.loc)
	a, ok := g.accs[start]
	if !ok {
		a = &acc{start: start, end: PeriodEnd(start, g.res, g.loc)}
		g.accs[start] = a
	}
	return a
}

func (g *grouper) sorted() []*acc {
	out := make([]*acc, 0, len(g.accs))
	for _, a := range g.accs {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *acc) int { return cmp.Compare(a.start, b.start) })
	return out
}

// groupSamples feeds raw readings into a grouper. Each reading contributes its
// utilization as peak, min and average; a reset boundary in either window
// counts against the period of the reading that starts the new window.
func groupSamples(readings []schema.Reading, opts Options) *grouper {
	g := newGrouper(opts.Resolution, opts.location())
	var prevFive, prevSeven *schema.Sample

	for _, r := range readings {
		if !opts.Range.Contains(r.Timestamp) {
			continue
		}
		five := validOrNil(r.FiveHourUtil)
		seven := validOrNil(r.SevenDayUtil)
		if five == nil && seven == nil {
			continue
		}

		a := g.at(r.Timestamp)
		a.samples++
		a.fiveHour.add(five, five, five)
		a.sevenDay.add(seven, seven, seven)

		if five != nil {
			cur := r.SampleFor(schema.FiveHourWindow)
			if prevFive != nil && chart.IsResetBoundary(*prevFive, cur, opts.Reset) {
				a.resets++
			}
			prevFive = &cur
		}
		if seven != nil {
			cur := r.SampleFor(schema.SevenDayWindow)
			if prevSeven != nil && chart.IsResetBoundary(*prevSeven, cur, opts.Reset) {
				a.resets++
			}
			prevSeven = &cur
		}
	}
	return g
}

// FromSamples aggregates raw readings into one bucket per populated period.
// Empty periods produce no bucket. At raw resolution every valid reading
// becomes its own zero-length bucket.
func FromSamples(readings []schema.Reading, opts Options) []schema.Bucket {
	accs := groupSamples(readings, opts).sorted()
	out := make([]schema.Bucket, len(accs))
	for i, a := range accs {
		out[i] = a.bucket()
	}
	return out
}

// RollupsFromSamples aggregates raw readings into rollup rows at the given
// resolution, carrying the number of contributing readings.
func RollupsFromSamples(readings []schema.Reading, opts Options) []schema.Rollup {
	accs := groupSamples(readings, opts).sorted()
	out := make([]schema.Rollup, len(accs))
	for i, a := range accs {
		out[i] = a.rollup(opts.Resolution)
	}
	return out
}

// FromRollups aggregates rollup rows into target-resolution buckets: max of
// peaks, min of mins, unweighted mean of averages and sum of reset counts.
// Rows already at the target resolution keep their values, merging only with
// rows for the same period. Rows coarser than the target cannot be split so
// they pass through unchanged.
func FromRollups(rollups []schema.Rollup, opts Options) []schema.Bucket {
	g := newGrouper(opts.Resolution, opts.location())
	var passthrough []*acc

	for _, r := range rollups {
		coarser := r.Resolution.CoarserThan(opts.Resolution)
		if !opts.Range.Contains(r.PeriodStart) && !(coarser && opts.Range.Overlaps(r.PeriodStart, r.PeriodEnd)) {
			continue
		}
		var a *acc
		if coarser {
			a = &acc{start: r.PeriodStart, end: r.PeriodEnd}
			passthrough = append(passthrough, a)
		} else {
			a = g.at(r.PeriodStart)
		}
		a.fiveHour.add(r.FiveHourPeak, r.FiveHourMin, r.FiveHourAvg)
		a.sevenDay.add(r.SevenDayPeak, r.SevenDayMin, r.SevenDayAvg)
		a.resets += r.ResetCount
		a.samples += r.SampleCount
	}

	accs := append(g.sorted(), passthrough...)
	slices.SortStableFunc(accs, func(a, b *acc) int { return cmp.Compare(a.start, b.start) })
	out := make([]schema.Bucket, len(accs))
	for i, a := range accs {
		out[i] = a.bucket()
	}
	return out
}

// MergeRollups folds fresh rollups into the stored rows for the same
// resolution and period. Peaks take the max, mins the min, averages are
// weighted by sample count and reset and sample counts add up. Stored rows
// without a fresh counterpart are not returned.
func MergeRollups(stored, fresh []schema.Rollup) []schema.Rollup {
	type key struct {
		res   schema.Resolution
		start int64
	}
	accs := make(map[key]*acc, len(fresh))
	order := make([]key, 0, len(fresh))
	fold := func(r schema.Rollup) {
		k := key{r.Resolution, r.PeriodStart}
		a := accs[k]
		if a == nil {
			a = &acc{start: r.PeriodStart, end: r.PeriodEnd}
			accs[k] = a
			order = append(order, k)
		}
		a.fiveHour.addWeighted(r.FiveHourPeak, r.FiveHourMin, r.FiveHourAvg, r.SampleCount)
		a.sevenDay.addWeighted(r.SevenDayPeak, r.SevenDayMin, r.SevenDayAvg, r.SampleCount)
		a.resets += r.ResetCount
		a.samples += r.SampleCount
	}
	for _, r := range fresh {
		fold(r)
	}
	for _, r := range stored {
		if accs[key{r.Resolution, r.PeriodStart}] != nil {
			fold(r)
		}
	}

	out := make([]schema.Rollup, len(order))
	for i, k := range order {
		out[i] = accs[k].rollup(k.res)
	}
	return out
}

func validOrNil(u *float64) *float64 {
	if u == nil || math.IsNaN(*u) || *u < 0 || *u > 100 {
		return nil
	}
	return u
}

func ptr(v float64) *float64 { return &v }
