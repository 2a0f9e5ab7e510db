// Package mcpserver wires the tool provider into an MCP server served
// over stdio, the transport MCP hosts use to talk to local bridges.
package mcpserver

import (
	"context"
	"os"

	"teamleader-mcp/internal/tools"

	"github.com/mark3labs/mcp-go/server"
)

// Server exposes Teamleader Focus tools over the MCP protocol.
type Server struct {
	mcpServer *server.MCPServer
}

// New creates an MCP server and registers all tools on it.
func New(version string, provider *tools.Provider) *Server {
	s := server.NewMCPServer(
		"teamleader-mcp",
		version,
		server.WithToolCapabilities(false),
	)

	provider.Register(s)

	return &Server{mcpServer: s}
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout until the
// host closes the connection or the context is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}
