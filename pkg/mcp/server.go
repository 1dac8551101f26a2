// Package mcp serves the component catalog to MCP clients over stdio.
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/docgen/pkg/catalog"
	"github.com/gnana997/docgen/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for docgen, exposing catalog query tools.
type Server struct {
	mcpServer *server.MCPServer
	logger    *mcplog.Logger // nil disables call logging

	mu    sync.RWMutex
	query *catalog.QueryService
}

// NewServer creates a new MCP server backed by the given QueryService.
func NewServer(qs *catalog.QueryService, logger *mcplog.Logger) *Server {
	s := &Server{query: qs, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("docgen", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listSourcesTool(), Handler: s.handleListSources},
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
		server.ServerTool{Tool: getComponentTool(), Handler: s.handleGetComponent},
		server.ServerTool{Tool: searchComponentsTool(), Handler: s.handleSearchComponents},
	)

	return s
}

// SetQuery swaps the catalog served to subsequent calls. Watch mode calls
// it after every rebuild.
func (s *Server) SetQuery(qs *catalog.QueryService) {
	s.mu.Lock()
	s.query = qs
	s.mu.Unlock()
}

func (s *Server) queryService() *catalog.QueryService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
