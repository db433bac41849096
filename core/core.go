// Package core orchestrates chart and bar generation over the sample history.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/quotagraph/core/bucket"
	"github.com/huangsam/quotagraph/core/chart"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/internal/outwriter"
	"github.com/huangsam/quotagraph/schema"
)

// ExecutorFunc defines the function signature for executing different output modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteChart builds the line chart for the configured window and range
// and writes it out. It serves as the main entry point for the 'chart' command.
func ExecuteChart(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := GetChartResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintChartResult(result, cfg, time.Since(start))
}

// ExecuteBars builds the bar chart for the configured range and writes it out.
// It serves as the main entry point for the 'bars' command.
func ExecuteBars(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := GetBarResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintBarResult(result, cfg, time.Since(start))
}

// GetChartResults loads readings for the configured range and turns the
// selected window into chart segments. An empty history yields a result
// with no segments.
func GetChartResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.ChartResult, error) {
	endMs := cfg.EndTime.UnixMilli()
	readings, err := mgr.GetSampleStore().ListReadings(ctx, cfg.StartMs(), endMs+1)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}

	samples := schema.SamplesFor(readings, cfg.Window)
	opts := cfg.ChartOptions()
	segments := chart.Build(samples, opts)

	result := &schema.ChartResult{
		Window:         cfg.Window,
		Range:          cfg.Range,
		RangeStartMs:   opts.RangeStartMs,
		RangeEndMs:     opts.RangeEndMs,
		Width:          cfg.Width,
		Height:         cfg.Height,
		GapThresholdMs: chart.GapThresholdMs(cfg.PollIntervalSec),
		Segments:       segments,
	}
	if len(segments) > 0 {
		if result.RangeStartMs == 0 {
			result.RangeStartMs = segments[0].StartMs
		}
		result.Trend = chart.LatestTrend(segments)
	}
	if valid := chart.ValidSamples(samples); len(valid) > 0 {
		latest := *valid[len(valid)-1].Utilization
		result.Latest = &latest
		result.Headroom = schema.ClassifyHeadroom(latest)
	}
	return result, nil
}

// GetBarResults aggregates the configured range into calendar buckets.
// Stored rollups are combined with raw readings so that compacted history
// still shows up. Raw resolution yields one bucket per reading.
func GetBarResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.BarResult, error) {
	store := mgr.GetSampleStore()
	startMs, endMs := cfg.StartMs(), cfg.EndTime.UnixMilli()+1

	readings, err := store.ListReadings(ctx, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}

	opts := bucket.Options{
		Resolution: cfg.Resolution,
		Location:   cfg.Location,
		Range:      bucket.Range{StartMs: startMs, EndMs: endMs},
		Reset:      cfg.Reset,
	}
	result := &schema.BarResult{
		Range:      cfg.Range,
		Resolution: cfg.Resolution,
		Source:     schema.RawResolution,
	}

	if cfg.Resolution == schema.RawResolution {
		result.Buckets = bucket.FromSamples(readings, opts)
		return result, nil
	}

	stored, source, err := loadRollups(ctx, store, cfg.Resolution, opts.Location, startMs, endMs)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		result.Buckets = bucket.FromSamples(readings, opts)
	} else {
		result.Source = source
		rows := append(stored, bucket.RollupsFromSamples(readings, opts)...)
		result.Buckets = bucket.FromRollups(rows, opts)
	}
	result.Gaps = bucket.FindGaps(result.Buckets, cfg.Resolution)
	return result, nil
}

// loadRollups returns stored rollups at the coarsest resolution that is not
// coarser than target and has rows in range. Mixing resolutions would count
// the same readings twice. When none exist it falls back to the finest
// coarser resolution with rows, whose periods pass through unsplit.
func loadRollups(ctx context.Context, store contract.SampleStore, target schema.Resolution, loc *time.Location, startMs, endMs int64) ([]schema.Rollup, schema.Resolution, error) {
	if loc == nil {
		loc = time.Local
	}
	for i := len(schema.AllResolutions) - 1; i >= 0; i-- {
		res := schema.AllResolutions[i]
		if res == schema.RawResolution || res.CoarserThan(target) {
			continue
		}
		rows, err := store.ListRollups(ctx, res, startMs, endMs)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load %s rollups: %w", res, err)
		}
		if len(rows) > 0 {
			return rows, res, nil
		}
	}
	for _, res := range schema.AllResolutions {
		if !res.CoarserThan(target) {
			continue
		}
		from := startMs
		if from != 0 {
			from = bucket.PeriodStart(startMs, res, loc)
		}
		rows, err := store.ListRollups(ctx, res, from, endMs)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load %s rollups: %w", res, err)
		}
		if len(rows) > 0 {
			return rows, res, nil
		}
	}
	return nil, schema.RawResolution, nil
}
