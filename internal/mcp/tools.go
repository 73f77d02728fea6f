package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/bobmcallan/vire-charts/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ChartQuerier resolves a symbol (or "all") to its chart index.
type ChartQuerier interface {
	Query(symbol string) (interface{}, error)
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v into a single text content block.
func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}
}

// ListSymbolsTool returns the list_symbols tool definition.
func ListSymbolsTool() mcp.Tool {
	return mcp.NewTool("list_symbols",
		mcp.WithDescription("List the market index symbols that have chart directories."),
	)
}

// ListSymbolsHandler returns the known symbols as a JSON array.
func ListSymbolsHandler(registry *charts.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(registry.Symbols()), nil
	}
}

// GetChartsTool returns the get_charts tool definition.
func GetChartsTool() mcp.Tool {
	return mcp.NewTool("get_charts",
		mcp.WithDescription("Get the date-keyed chart index for a symbol: overview image, detailed images, tags, descriptions and summaries per date. Use \"all\" for every symbol."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Index symbol (e.g. 'nifty'), case-insensitive, or 'all'")),
	)
}

// GetChartsHandler returns the same JSON as GET /charts/{symbol}.
func GetChartsHandler(querier ChartQuerier) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := r.RequireString("symbol")
		if err != nil {
			return errorResult("symbol is required"), nil
		}

		result, err := querier.Query(symbol)
		if err != nil {
			if errors.Is(err, charts.ErrInvalidSymbol) {
				return errorResult("Invalid symbol"), nil
			}
			return errorResult("failed to build chart index"), nil
		}
		return jsonResult(result), nil
	}
}

// VersionTool returns the get_version tool definition.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the vire-charts server version. Use this to verify connectivity."),
	)
}

// VersionToolHandler returns version, build and commit.
func VersionToolHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(config.GetVersionInfo()), nil
	}
}
