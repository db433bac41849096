package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/quotagraph/core/bucket"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
)

// RollupStore compacts raw readings older than cfg.RollupAfter into hourly and
// daily rollups and then deletes them. The cutoff is aligned to local midnight
// so that no rollup period is split between stored rollups and raw readings.
func RollupStore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.RollupSummary, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	cutoffMs := bucket.PeriodStart(cfg.EndTime.Add(-cfg.RollupAfter).UnixMilli(), schema.DailyResolution, loc)
	summary := schema.RollupSummary{Cutoff: time.UnixMilli(cutoffMs).In(loc)}

	store := mgr.GetSampleStore()
	readings, err := store.ListReadings(ctx, 0, cutoffMs)
	if err != nil {
		return summary, fmt.Errorf("failed to load readings before cutoff: %w", err)
	}
	if len(readings) == 0 {
		return summary, nil
	}
	summary.ReadingsRolled = len(readings)

	rollupAt := func(res schema.Resolution) []schema.Rollup {
		return bucket.RollupsFromSamples(readings, bucket.Options{Resolution: res, Location: loc, Reset: cfg.Reset})
	}
	hourly := rollupAt(schema.HourlyResolution)
	daily := rollupAt(schema.DailyResolution)
	summary.HourlyRollups = len(hourly)
	summary.DailyRollups = len(daily)
	rollups, err := mergeStored(ctx, store, append(hourly, daily...))
	if err != nil {
		return summary, err
	}

	// Rollups first: a failure here must leave the raw readings in place.
	if err := store.UpsertRollups(ctx, rollups); err != nil {
		return summary, fmt.Errorf("failed to store rollups: %w", err)
	}
	deleted, err := store.DeleteReadingsBefore(ctx, cutoffMs)
	if err != nil {
		return summary, fmt.Errorf("failed to delete compacted readings: %w", err)
	}
	summary.ReadingsDeleted = deleted
	return summary, nil
}

// mergeStored folds rollups already in the store into the fresh ones so a
// later pass over newly imported old readings keeps earlier aggregates.
func mergeStored(ctx context.Context, store contract.SampleStore, fresh []schema.Rollup) ([]schema.Rollup, error) {
	var stored []schema.Rollup
	for _, res := range []schema.Resolution{schema.HourlyResolution, schema.DailyResolution} {
		startMs, endMs, ok := periodSpan(fresh, res)
		if !ok {
			continue
		}
		rows, err := store.ListRollups(ctx, res, startMs, endMs)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored %s rollups: %w", res, err)
		}
		stored = append(stored, rows...)
	}
	return bucket.MergeRollups(stored, fresh), nil
}

// periodSpan returns the [start, end) period start range of rollups at res.
func periodSpan(rollups []schema.Rollup, res schema.Resolution) (int64, int64, bool) {
	var startMs, endMs int64
	found := false
	for _, r := range rollups {
		if r.Resolution != res {
			continue
		}
		if !found || r.PeriodStart < startMs {
			startMs = r.PeriodStart
		}
		if !found || r.PeriodStart+1 > endMs {
			endMs = r.PeriodStart + 1
		}
		found = true
	}
	return startMs, endMs, found
}
