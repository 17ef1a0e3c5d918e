package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/propdoc/pkg/mcplog"
)

// loggingMiddleware records every tool call through the server's call log.
// Only installed when the call log is configured.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			var errStr *string
			if err != nil {
				msg := err.Error()
				errStr = &msg
			}

			args := req.GetArguments()
			entry := mcplog.LogEntry{
				Ts:            start.UTC().Format(time.RFC3339),
				Tool:          req.Params.Name,
				Component:     mcplog.ComponentParam(args),
				Params:        mcplog.SanitizeParams(args),
				DurationMs:    time.Since(start).Milliseconds(),
				ResponseBytes: mcplog.ResponseBytes(result),
				ToolError:     result != nil && result.IsError,
				Error:         errStr,
			}
			if werr := s.logger.Write(entry); werr != nil {
				s.log.Warn("failed to write tool call log", "tool", entry.Tool, "error", werr)
			}

			return result, err
		}
	}
}
