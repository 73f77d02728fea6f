package mcp

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/bobmcallan/vire-charts/internal/common"
	"github.com/bobmcallan/vire-charts/internal/config"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewServer creates an MCP server with the chart tools registered.
func NewServer(registry *charts.Registry, querier ChartQuerier) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		"vire-charts",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	s.AddTools(
		mcpserver.ServerTool{Tool: ListSymbolsTool(), Handler: ListSymbolsHandler(registry)},
		mcpserver.ServerTool{Tool: GetChartsTool(), Handler: GetChartsHandler(querier)},
		mcpserver.ServerTool{Tool: VersionTool(), Handler: VersionToolHandler()},
	)

	return s
}

// NewHandler creates a stateless streamable HTTP MCP handler.
func NewHandler(registry *charts.Registry, querier ChartQuerier, logger *common.Logger) *Handler {
	s := NewServer(registry, querier)

	streamable := mcpserver.NewStreamableHTTPServer(s,
		mcpserver.WithStateLess(true),
	)

	if logger != nil {
		logger.Info().
			Str("symbols", strings.Join(registry.Symbols(), ",")).
			Msg("MCP handler initialized")
	}

	return &Handler{
		server:     s,
		streamable: streamable,
		logger:     logger,
	}
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
