package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func whoamiTool() mcp.Tool {
	return mcp.NewTool("whoami",
		mcp.WithDescription("Get the user the current credential belongs to (users.me). Useful to verify authentication and discover the account's departments."),
	)
}

func (p *Provider) handleWhoami(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return p.call(ctx, "users.me", nil)
}
