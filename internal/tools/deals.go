package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func dealsListTool() mcp.Tool {
	return mcp.NewTool("deals_list",
		mcp.WithDescription("List deals, optionally filtered by a title fragment or pipeline phase."),
		mcp.WithString("term", mcp.Description("Filter on deal title or reference fragment")),
		mcp.WithString("phase_id", mcp.Description("Filter on pipeline phase id (UUID)")),
		mcp.WithNumber("page", mcp.Description("Page number, 1-based")),
		mcp.WithNumber("page_size", mcp.Description("Results per page (default 20)")),
	)
}

func (p *Provider) handleDealsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}

	filter := map[string]interface{}{}
	if term := request.GetString("term", ""); term != "" {
		filter["term"] = term
	}
	if phaseID := request.GetString("phase_id", ""); phaseID != "" {
		filter["phase_id"] = phaseID
	}
	if len(filter) > 0 {
		body["filter"] = filter
	}
	if pg := page(request); pg != nil {
		body["page"] = pg
	}

	return p.call(ctx, "deals.list", body)
}

func dealsCreateTool() mcp.Tool {
	return mcp.NewTool("deals_create",
		mcp.WithDescription("Create a new deal for a contact or company."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Deal title")),
		mcp.WithString("customer_type", mcp.Required(), mcp.Description("Customer type: 'contact' or 'company'"), mcp.Enum("contact", "company")),
		mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer id (UUID)")),
		mcp.WithNumber("value", mcp.Description("Estimated value amount")),
		mcp.WithString("currency", mcp.Description("Estimated value currency (ISO 4217, default EUR)")),
		mcp.WithString("phase_id", mcp.Description("Pipeline phase to create the deal in (UUID)")),
	)
}

func (p *Provider) handleDealsCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required"), nil
	}
	customerType, err := request.RequireString("customer_type")
	if err != nil {
		return mcp.NewToolResultError("customer_type argument is required ('contact' or 'company')"), nil
	}
	if customerType != "contact" && customerType != "company" {
		return mcp.NewToolResultError("customer_type must be 'contact' or 'company'"), nil
	}
	customerID, err := request.RequireString("customer_id")
	if err != nil {
		return mcp.NewToolResultError("customer_id argument is required"), nil
	}

	body := map[string]interface{}{
		"title": title,
		"lead": map[string]interface{}{
			"customer": map[string]interface{}{
				"type": customerType,
				"id":   customerID,
			},
		},
	}

	if value := request.GetFloat("value", 0); value > 0 {
		currency := request.GetString("currency", "EUR")
		body["estimated_value"] = map[string]interface{}{
			"amount":   value,
			"currency": currency,
		}
	}
	if phaseID := request.GetString("phase_id", ""); phaseID != "" {
		body["phase_id"] = phaseID
	}

	return p.call(ctx, "deals.create", body)
}
