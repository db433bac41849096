package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/quotagraph/core/chart"
	"github.com/huangsam/quotagraph/internal/contract"
	mcp_internal "github.com/huangsam/quotagraph/internal/mcp"
	"github.com/huangsam/quotagraph/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

func baseConfig() *contract.Config {
	return &contract.Config{
		Window:          schema.FiveHourWindow,
		Range:           schema.Last24Hours,
		Resolution:      schema.FiveMinuteResolution,
		StartTime:       end.Add(-24 * time.Hour),
		EndTime:         end,
		Location:        time.UTC,
		Width:           600,
		Height:          200,
		PollIntervalSec: 60,
		Reset:           chart.DefaultResetPolicy(),
		Slope:           chart.DefaultSlopePolicy(),
	}
}

func f64(v float64) *float64 { return &v }

func readings() []schema.Reading {
	out := make([]schema.Reading, 10)
	for i := range out {
		out[i] = schema.Reading{
			Timestamp:    end.Add(time.Duration(i-9) * time.Minute).UnixMilli(),
			FiveHourUtil: f64(float64(10 + i)),
			SevenDayUtil: f64(50),
		}
	}
	return out
}

func newServerWithStore() (*contract.MockSampleStore, *contract.MockStoreManager) {
	store := &contract.MockSampleStore{}
	mgr := &contract.MockStoreManager{}
	mgr.On("GetSampleStore").Return(store)
	return store, mgr
}

func call(t *testing.T, cfg *contract.Config, mgr contract.StoreManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	// Validation fails before the manager is touched.
	var mgr contract.StoreManager

	tests := []struct {
		tool     string
		args     map[string]any
		expected string
	}{
		{"get_chart_segments", map[string]any{"window": "monthly"}, "invalid window"},
		{"get_chart_segments", map[string]any{"range": "last_year"}, "invalid range"},
		{"get_chart_segments", map[string]any{"width": -10.0}, "width must be positive"},
		{"get_chart_segments", map[string]any{"height": -1.0}, "height must be positive"},
		{"get_usage_bars", map[string]any{"resolution": "weekly"}, "invalid resolution"},
		{"get_usage_bars", map[string]any{"range": "forever"}, "invalid range"},
	}
	for _, tt := range tests {
		t.Run(tt.tool+" "+tt.expected, func(t *testing.T) {
			res := call(t, baseConfig(), mgr, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(res), tt.expected)
		})
	}
}

func TestMCPServerHandlers_ChartSegments(t *testing.T) {
	store, mgr := newServerWithStore()
	store.On("ListReadings", mock.Anything, mock.Anything, mock.Anything).Return(readings(), nil)

	res := call(t, baseConfig(), mgr, "get_chart_segments", map[string]any{
		"window": "seven_day",
		"width":  300.0,
	})
	require.False(t, res.IsError, text(res))

	var got schema.ChartResult
	require.NoError(t, json.Unmarshal([]byte(text(res)), &got))
	assert.Equal(t, schema.SevenDayWindow, got.Window)
	assert.InDelta(t, 300.0, got.Width, 1e-9)
	require.NotNil(t, got.Latest)
	assert.InDelta(t, 50.0, *got.Latest, 1e-9)
	assert.NotEmpty(t, got.Segments)
}

func TestMCPServerHandlers_ChartRangeChangesQuery(t *testing.T) {
	store, mgr := newServerWithStore()
	weekStart := end.Add(-7 * 24 * time.Hour).UnixMilli()
	store.On("ListReadings", mock.Anything, weekStart, end.UnixMilli()+1).Return([]schema.Reading{}, nil)

	res := call(t, baseConfig(), mgr, "get_chart_segments", map[string]any{"range": "last_7d"})
	require.False(t, res.IsError, text(res))
	store.AssertExpectations(t)
}

func TestMCPServerHandlers_UsageBars(t *testing.T) {
	store, mgr := newServerWithStore()
	store.On("ListReadings", mock.Anything, mock.Anything, mock.Anything).Return(readings(), nil)
	store.On("ListRollups", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]schema.Rollup{}, nil)

	res := call(t, baseConfig(), mgr, "get_usage_bars", map[string]any{"range": "last_7d"})
	require.False(t, res.IsError, text(res))

	var got schema.BarResult
	require.NoError(t, json.Unmarshal([]byte(text(res)), &got))
	assert.Equal(t, schema.Last7Days, got.Range)
	assert.Equal(t, schema.HourlyResolution, got.Resolution)
	require.Len(t, got.Buckets, 2) // 09:51 through 10:00
	assert.InDelta(t, 19.0, *got.Buckets[1].FiveHourPeak, 1e-9)
}

func TestMCPServerHandlers_UsageBarsRaw(t *testing.T) {
	store, mgr := newServerWithStore()
	store.On("ListReadings", mock.Anything, mock.Anything, mock.Anything).Return(readings(), nil)

	res := call(t, baseConfig(), mgr, "get_usage_bars", map[string]any{"resolution": "raw"})
	require.False(t, res.IsError, text(res))

	var got schema.BarResult
	require.NoError(t, json.Unmarshal([]byte(text(res)), &got))
	assert.Len(t, got.Buckets, 10)
	assert.Empty(t, got.Gaps)
}

func TestMCPServerHandlers_StoreErrors(t *testing.T) {
	store, mgr := newServerWithStore()
	store.On("ListReadings", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	store.On("GetStatus", mock.Anything).Return(schema.StoreStatus{}, errors.New("connection refused"))

	for _, name := range []string{"get_chart_segments", "get_usage_bars", "get_store_status"} {
		res := call(t, baseConfig(), mgr, name, map[string]any{})
		assert.True(t, res.IsError, name)
		assert.Contains(t, text(res), "connection refused")
	}
}

func TestMCPServerHandlers_StoreStatus(t *testing.T) {
	store, mgr := newServerWithStore()
	store.On("GetStatus", mock.Anything).Return(schema.StoreStatus{
		Backend:       "sqlite",
		Connected:     true,
		TotalReadings: 42,
		RollupCounts:  map[schema.Resolution]int{schema.HourlyResolution: 3},
	}, nil)

	res := call(t, baseConfig(), mgr, "get_store_status", nil)
	require.False(t, res.IsError)
	assert.Contains(t, text(res), `"TotalReadings": 42`)
	assert.Contains(t, text(res), `"hourly": 3`)
}
