// Package mcp exposes the portfolio engine as MCP tools.
package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-folio/internal/common"
)

// ServerName identifies the MCP server to clients.
const ServerName = "vire-folio"

// NewServer creates an MCP server with every portfolio tool registered.
func NewServer(svc Service, currency string, logger *common.Logger) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		ServerName,
		common.Version,
		mcpserver.WithToolCapabilities(true),
	)
	toolCount := RegisterTools(s, svc, currency, logger)
	logger.Debug().Int("tools", toolCount).Msg("MCP tools registered")
	return s
}

// RegisterTools adds the portfolio tools to s and returns how many were added.
func RegisterTools(s *mcpserver.MCPServer, svc Service, currency string, logger *common.Logger) int {
	s.AddTool(HoldingsTool(), HoldingsHandler(svc, currency))
	s.AddTool(DividendsTool(), DividendsHandler(svc, currency))
	s.AddTool(ProjectionTool(), ProjectionHandler(svc, currency))
	s.AddTool(PeriodTool(), PeriodHandler(svc, currency))
	s.AddTool(ImportTool(), ImportHandler(svc, logger))
	s.AddTool(VersionTool(), VersionToolHandler())
	return 6
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler creates the /mcp handler over a stateless streamable transport.
func NewHandler(s *mcpserver.MCPServer, logger *common.Logger) *Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s,
		mcpserver.WithStateLess(true),
	)
	logger.Info().Msg("MCP handler initialized")
	return &Handler{streamable: streamable, logger: logger}
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
