package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/quotagraph/core"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// scopedConfig clones the base config, switching range when one is requested.
func (h *toolHandler) scopedConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if r := request.GetString("range", ""); r != "" {
		tr, err := schema.ParseTimeRange(r)
		if err != nil {
			return nil, fmt.Errorf("invalid range: %w", err)
		}
		cfg = h.baseCfg.CloneWithRange(tr)
	}
	return cfg, nil
}

func (h *toolHandler) handleGetChartSegments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.scopedConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if w := request.GetString("window", ""); w != "" {
		if cfg.Window, err = schema.ParseWindow(w); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid window: %v", err)), nil
		}
	}
	if width := request.GetFloat("width", 0); width != 0 {
		if width < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("width must be positive, got %g", width)), nil
		}
		cfg.Width = width
	}
	if height := request.GetFloat("height", 0); height != 0 {
		if height < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("height must be positive, got %g", height)), nil
		}
		cfg.Height = height
	}

	result, err := core.GetChartResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetUsageBars(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.scopedConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if r := request.GetString("resolution", ""); r != "" {
		if cfg.Resolution, err = schema.ParseResolution(r); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid resolution: %v", err)), nil
		}
	}

	result, err := core.GetBarResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetStoreStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.mgr.GetSampleStore().GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
