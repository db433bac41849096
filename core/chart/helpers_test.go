package chart

import "github.com/huangsam/quotagraph/schema"

const baseMs = int64(1_717_200_000_000) // 2024-06-01T00:00:00Z

func f64(v float64) *float64 { return &v }

func i64(v int64) *int64 { return &v }

func sample(ts int64, util float64, resetAt int64) schema.Sample {
	s := schema.Sample{Timestamp: ts, Utilization: f64(util)}
	if resetAt != 0 {
		s.WindowResetAt = i64(resetAt)
	}
	return s
}

// series returns n samples spaced by step starting at start, with utilization
// starting at from and growing by inc per sample.
func series(start int64, n int, step int64, from, inc float64, resetAt int64) []schema.Sample {
	out := make([]schema.Sample, n)
	for i := range n {
		out[i] = sample(start+int64(i)*step, from+float64(i)*inc, resetAt)
	}
	return out
}
