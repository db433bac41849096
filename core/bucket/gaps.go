package bucket

import "github.com/huangsam/quotagraph/schema"

// FindGaps returns the interior runs of missing periods between present
// buckets. Each run becomes one range from the end of the bucket before it to
// the start of the bucket after it. Silence before the first or after the
// last bucket is not reported, and raw resolution has no periods to miss.
func FindGaps(buckets []schema.Bucket, res schema.Resolution) []schema.GapRange {
	switch res {
	case schema.RawResolution:
		return nil
	case schema.FiveMinuteResolution, schema.HourlyResolution, schema.DailyResolution:
		return interiorGaps(buckets)
	}
	panic(&schema.UnknownEnumError{Kind: "resolution", Value: string(res)})
}

func interiorGaps(buckets []schema.Bucket) []schema.GapRange {
	var gaps []schema.GapRange
	for i := 1; i < len(buckets); i++ {
		prevEnd, nextStart := buckets[i-1].PeriodEnd, buckets[i].PeriodStart
		if nextStart > prevEnd {
			gaps = append(gaps, schema.GapRange{Start: prevEnd, End: nextStart})
		}
	}
	return gaps
}
