package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/docgen/pkg/mcplog"
)

// loggingMiddleware records every tool call through the server's call log.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			s.logger.Record(ctx, mcplog.Call{
				Tool:          req.Params.Name,
				Params:        req.GetArguments(),
				Duration:      time.Since(start),
				ResponseBytes: mcplog.ResponseBytes(result),
				IsError:       result != nil && result.IsError,
				Err:           err,
			})
			return result, err
		}
	}
}
