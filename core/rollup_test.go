package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/quotagraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) int64 {
	return time.Date(2025, 10, day, hour, minute, 0, 0, time.UTC).UnixMilli()
}

func TestRollupStore_SQLite(t *testing.T) {
	ctx := context.Background()
	mgr := newSQLiteManager(t)
	store := mgr.GetSampleStore()

	old := []schema.Reading{
		{Timestamp: at(20, 9, 0), FiveHourUtil: f64(10)},
		{Timestamp: at(20, 9, 30), FiveHourUtil: f64(30)},
		{Timestamp: at(20, 11, 0), FiveHourUtil: f64(20)},
	}
	recent := schema.Reading{Timestamp: fixedEnd.Add(-time.Hour).UnixMilli(), FiveHourUtil: f64(55)}
	_, err := store.InsertReadings(ctx, append(old, recent))
	require.NoError(t, err)

	cfg := baseConfig()
	summary, err := RollupStore(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.True(t, summary.Cutoff.Equal(time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, summary.ReadingsRolled)
	assert.Equal(t, 2, summary.HourlyRollups)
	assert.Equal(t, 1, summary.DailyRollups)
	assert.Equal(t, int64(3), summary.ReadingsDeleted)

	remaining, err := store.ListReadings(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.Timestamp, remaining[0].Timestamp)

	hourly, err := store.ListRollups(ctx, schema.HourlyResolution, 0, 0)
	require.NoError(t, err)
	require.Len(t, hourly, 2)
	assert.Equal(t, 2, hourly[0].SampleCount)
	assert.InDelta(t, 30.0, *hourly[0].FiveHourPeak, 1e-9)

	// A second pass has nothing left to compact.
	again, err := RollupStore(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.Zero(t, again.ReadingsRolled)

	// Bars over all time still see the compacted day.
	cfg.Range = schema.AllTime
	cfg.StartTime = time.Time{}
	cfg.Resolution = schema.DailyResolution
	bars, err := GetBarResults(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, schema.DailyResolution, bars.Source)
	require.Len(t, bars.Buckets, 2)
	assert.Equal(t, at(20, 0, 0), bars.Buckets[0].PeriodStart)
	assert.InDelta(t, 30.0, *bars.Buckets[0].FiveHourPeak, 1e-9)
	assert.InDelta(t, 55.0, *bars.Buckets[1].FiveHourPeak, 1e-9)
	require.Len(t, bars.Gaps, 1)
	assert.Equal(t, at(21, 0, 0), bars.Gaps[0].Start)
}

func TestRollupStore_NothingToCompact(t *testing.T) {
	store, mgr := newMockManager()
	store.On("ListReadings", mock.Anything, int64(0), mock.Anything).Return([]schema.Reading{}, nil)

	summary, err := RollupStore(context.Background(), baseConfig(), mgr)
	require.NoError(t, err)
	assert.Zero(t, summary.ReadingsRolled)
	store.AssertNotCalled(t, "UpsertRollups", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteReadingsBefore", mock.Anything, mock.Anything)
}

func TestRollupStore_UpsertFailureKeepsReadings(t *testing.T) {
	store, mgr := newMockManager()
	store.On("ListReadings", mock.Anything, mock.Anything, mock.Anything).Return([]schema.Reading{{Timestamp: at(1, 0, 0), FiveHourUtil: f64(1)}}, nil)
	store.On("ListRollups", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]schema.Rollup{}, nil)
	store.On("UpsertRollups", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := RollupStore(context.Background(), baseConfig(), mgr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store rollups")
	store.AssertNotCalled(t, "DeleteReadingsBefore", mock.Anything, mock.Anything)
}

func TestRollupStore_RerunMergesStoredRollups(t *testing.T) {
	ctx := context.Background()
	mgr := newSQLiteManager(t)
	store := mgr.GetSampleStore()
	cfg := baseConfig()

	_, err := store.InsertReadings(ctx, []schema.Reading{
		{Timestamp: at(20, 9, 0), FiveHourUtil: f64(80)},
		{Timestamp: at(20, 9, 30), FiveHourUtil: f64(90)},
	})
	require.NoError(t, err)
	_, err = RollupStore(ctx, cfg, mgr)
	require.NoError(t, err)

	// An older reading imported after the day was compacted.
	_, err = store.InsertReadings(ctx, []schema.Reading{{Timestamp: at(20, 9, 45), FiveHourUtil: f64(5)}})
	require.NoError(t, err)
	summary, err := RollupStore(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ReadingsRolled)

	daily, err := store.ListRollups(ctx, schema.DailyResolution, 0, 0)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.InDelta(t, 90.0, *daily[0].FiveHourPeak, 1e-9)
	assert.InDelta(t, 5.0, *daily[0].FiveHourMin, 1e-9)
	assert.InDelta(t, 175.0/3, *daily[0].FiveHourAvg, 1e-9)
	assert.Equal(t, 3, daily[0].SampleCount)

	hourly, err := store.ListRollups(ctx, schema.HourlyResolution, 0, 0)
	require.NoError(t, err)
	require.Len(t, hourly, 1)
	assert.InDelta(t, 90.0, *hourly[0].FiveHourPeak, 1e-9)
	assert.Equal(t, 3, hourly[0].SampleCount)
}
