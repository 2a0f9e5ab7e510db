package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func companiesListTool() mcp.Tool {
	return mcp.NewTool("companies_list",
		mcp.WithDescription("List companies, optionally filtered by a name or VAT number fragment."),
		mcp.WithString("term", mcp.Description("Filter on company name, VAT number or email fragment")),
		mcp.WithNumber("page", mcp.Description("Page number, 1-based")),
		mcp.WithNumber("page_size", mcp.Description("Results per page (default 20)")),
	)
}

func (p *Provider) handleCompaniesList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}

	if term := request.GetString("term", ""); term != "" {
		body["filter"] = map[string]interface{}{"term": term}
	}
	if pg := page(request); pg != nil {
		body["page"] = pg
	}

	return p.call(ctx, "companies.list", body)
}

func companiesInfoTool() mcp.Tool {
	return mcp.NewTool("companies_info",
		mcp.WithDescription("Get the full details of a single company."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Company id (UUID)")),
	)
}

func (p *Provider) handleCompaniesInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}

	return p.call(ctx, "companies.info", map[string]interface{}{"id": id})
}
