package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func contactsListTool() mcp.Tool {
	return mcp.NewTool("contacts_list",
		mcp.WithDescription("List contacts, optionally filtered by a name fragment or email address."),
		mcp.WithString("term", mcp.Description("Filter on first name, last name or email fragment")),
		mcp.WithString("email", mcp.Description("Filter on exact primary email address")),
		mcp.WithNumber("page", mcp.Description("Page number, 1-based")),
		mcp.WithNumber("page_size", mcp.Description("Results per page (default 20)")),
	)
}

func (p *Provider) handleContactsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}

	filter := map[string]interface{}{}
	if term := request.GetString("term", ""); term != "" {
		filter["term"] = term
	}
	if email := request.GetString("email", ""); email != "" {
		filter["email"] = map[string]interface{}{
			"type":  "primary",
			"email": email,
		}
	}
	if len(filter) > 0 {
		body["filter"] = filter
	}
	if pg := page(request); pg != nil {
		body["page"] = pg
	}

	return p.call(ctx, "contacts.list", body)
}

func contactsInfoTool() mcp.Tool {
	return mcp.NewTool("contacts_info",
		mcp.WithDescription("Get the full details of a single contact."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Contact id (UUID)")),
	)
}

func (p *Provider) handleContactsInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}

	return p.call(ctx, "contacts.info", map[string]interface{}{"id": id})
}

func contactsAddTool() mcp.Tool {
	return mcp.NewTool("contacts_add",
		mcp.WithDescription("Create a new contact."),
		mcp.WithString("last_name", mcp.Required(), mcp.Description("Last name")),
		mcp.WithString("first_name", mcp.Description("First name")),
		mcp.WithString("email", mcp.Description("Primary email address")),
		mcp.WithString("telephone", mcp.Description("Mobile phone number")),
	)
}

func (p *Provider) handleContactsAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lastName, err := request.RequireString("last_name")
	if err != nil {
		return mcp.NewToolResultError("last_name argument is required"), nil
	}

	body := map[string]interface{}{
		"last_name": lastName,
	}
	if firstName := request.GetString("first_name", ""); firstName != "" {
		body["first_name"] = firstName
	}
	if email := request.GetString("email", ""); email != "" {
		body["emails"] = []map[string]interface{}{
			{"type": "primary", "email": email},
		}
	}
	if telephone := request.GetString("telephone", ""); telephone != "" {
		body["telephones"] = []map[string]interface{}{
			{"type": "mobile", "number": telephone},
		}
	}

	return p.call(ctx, "contacts.add", body)
}
