// Package tools exposes Teamleader Focus operations as MCP tools.
//
// Each tool validates its argument shape, maps the arguments onto the
// fixed JSON body of one Focus action, issues the call through the
// authenticated client, and returns the response data as JSON text.
// Tool handlers report problems as error results rather than Go
// errors, so the MCP host can show them to the model.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"teamleader-mcp/internal/focus"
	"teamleader-mcp/internal/oauth"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Caller is the slice of the Focus client the tools need. Tests
// substitute fakes.
type Caller interface {
	Call(ctx context.Context, action string, body interface{}, out interface{}) error
}

// Provider registers and handles all Focus tools.
type Provider struct {
	client Caller
}

// NewProvider creates a tool provider backed by the given client.
func NewProvider(client Caller) *Provider {
	return &Provider{client: client}
}

// Register adds every tool to the MCP server.
func (p *Provider) Register(s *server.MCPServer) {
	s.AddTool(whoamiTool(), p.handleWhoami)

	s.AddTool(contactsListTool(), p.handleContactsList)
	s.AddTool(contactsInfoTool(), p.handleContactsInfo)
	s.AddTool(contactsAddTool(), p.handleContactsAdd)

	s.AddTool(companiesListTool(), p.handleCompaniesList)
	s.AddTool(companiesInfoTool(), p.handleCompaniesInfo)

	s.AddTool(dealsListTool(), p.handleDealsList)
	s.AddTool(dealsCreateTool(), p.handleDealsCreate)

	s.AddTool(invoicesListTool(), p.handleInvoicesList)
	s.AddTool(invoicesInfoTool(), p.handleInvoicesInfo)
}

// call issues one Focus action and converts the outcome into a tool
// result.
func (p *Provider) call(ctx context.Context, action string, body interface{}) (*mcp.CallToolResult, error) {
	var env focus.Envelope
	if err := p.client.Call(ctx, action, body, &env); err != nil {
		if oauth.IsReauthRequired(err) {
			return mcp.NewToolResultError("Authentication expired and could not be refreshed. Run 'teamleader-mcp auth login' to re-authenticate."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err)), nil
	}

	return envelopeResult(action, env)
}

// envelopeResult renders the response envelope as indented JSON text.
func envelopeResult(action string, env focus.Envelope) (*mcp.CallToolResult, error) {
	payload := struct {
		Data json.RawMessage `json:"data"`
		Meta json.RawMessage `json:"meta,omitempty"`
	}{Data: env.Data, Meta: env.Meta}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format %s response: %v", action, err)), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}

// page builds the Focus pagination object from tool arguments.
// Returns nil when neither argument was supplied.
func page(request mcp.CallToolRequest) map[string]interface{} {
	number := request.GetInt("page", 0)
	size := request.GetInt("page_size", 0)
	if number <= 0 && size <= 0 {
		return nil
	}

	pg := map[string]interface{}{}
	if number > 0 {
		pg["number"] = number
	}
	if size > 0 {
		pg["size"] = size
	}
	return pg
}
