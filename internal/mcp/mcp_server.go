// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the quotagraph MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Quotagraph Usage Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_chart_segments ---
	s.AddTool(mcp.NewTool("get_chart_segments",
		mcp.WithDescription("Build line-chart segments of quota utilization for one window, with gaps and trend levels."),
		mcp.WithString("window", mcp.Description("Quota window. Defaults to 'five_hour'."), mcp.Enum("five_hour", "seven_day")),
		mcp.WithString("range", mcp.Description("Time range to chart. Defaults to the configured range."), mcp.Enum("last_24h", "last_7d", "last_30d", "all_time")),
		mcp.WithNumber("width", mcp.Description("Chart width in display units.")),
		mcp.WithNumber("height", mcp.Description("Chart height in display units.")),
	), h.handleGetChartSegments)

	// --- 2. Tool: get_usage_bars ---
	s.AddTool(mcp.NewTool("get_usage_bars",
		mcp.WithDescription("Aggregate utilization into calendar buckets with peaks, averages, reset counts and missing ranges."),
		mcp.WithString("range", mcp.Description("Time range to aggregate."), mcp.Enum("last_24h", "last_7d", "last_30d", "all_time")),
		mcp.WithString("resolution", mcp.Description("Bucket size. Defaults to the range's natural resolution."), mcp.Enum("raw", "five_minute", "hourly", "daily")),
	), h.handleGetUsageBars)

	// --- 3. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Report how many readings and rollups the history store holds and which span they cover."),
	), h.handleGetStoreStatus)

	return s
}

// StartMCPServer starts the quotagraph MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
