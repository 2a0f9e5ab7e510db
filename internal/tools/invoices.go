package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func invoicesListTool() mcp.Tool {
	return mcp.NewTool("invoices_list",
		mcp.WithDescription("List invoices, optionally filtered by status or a reference fragment."),
		mcp.WithString("status", mcp.Description("Filter on invoice status"), mcp.Enum("draft", "outstanding", "matched")),
		mcp.WithString("term", mcp.Description("Filter on invoice number or purchase order fragment")),
		mcp.WithNumber("page", mcp.Description("Page number, 1-based")),
		mcp.WithNumber("page_size", mcp.Description("Results per page (default 20)")),
	)
}

func (p *Provider) handleInvoicesList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}

	filter := map[string]interface{}{}
	if status := request.GetString("status", ""); status != "" {
		filter["status"] = []string{status}
	}
	if term := request.GetString("term", ""); term != "" {
		filter["term"] = term
	}
	if len(filter) > 0 {
		body["filter"] = filter
	}
	if pg := page(request); pg != nil {
		body["page"] = pg
	}

	return p.call(ctx, "invoices.list", body)
}

func invoicesInfoTool() mcp.Tool {
	return mcp.NewTool("invoices_info",
		mcp.WithDescription("Get the full details of a single invoice, including grouped lines."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Invoice id (UUID)")),
	)
}

func (p *Provider) handleInvoicesInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}

	return p.call(ctx, "invoices.info", map[string]interface{}{"id": id})
}
