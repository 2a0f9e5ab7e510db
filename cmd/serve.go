package cmd

import (
	"fmt"

	"teamleader-mcp/internal/focus"
	"teamleader-mcp/internal/mcpserver"
	"teamleader-mcp/internal/oauth"
	"teamleader-mcp/internal/tools"
	"teamleader-mcp/pkg/logging"

	"github.com/spf13/cobra"
)

// serveCmd starts the MCP server on stdio.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Teamleader Focus tools over MCP on stdio",
	Long: `Start the MCP server. The MCP protocol is spoken on stdin/stdout, so
this command is meant to be launched by an MCP host (Claude Desktop,
Cursor, ...), not interactively. All logging goes to stderr.

A credential must be available: either run 'teamleader-mcp auth login'
first, or supply TEAMLEADER_ACCESS_TOKEN (optionally with client id,
secret and refresh token for automatic refresh).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	comps, err := buildAuthComponents()
	if err != nil {
		return err
	}

	st := comps.manager.Status()
	if !st.Authenticated {
		return fmt.Errorf("no credential available to serve with: %w", errAuthRequired)
	}
	logging.Info("Serve", "Starting MCP server (refresh capability: %t)", st.CanRefresh)

	// Pick up credentials written by an `auth login` running next to
	// this process. Best effort: serving works without the watcher.
	watcher, err := oauth.NewCredentialWatcher(comps.store, comps.manager)
	if err != nil {
		logging.Warn("Serve", "Credential watcher unavailable: %v", err)
	} else {
		watcher.Start(cmd.Context())
		defer watcher.Close()
	}

	var clientOpts []focus.ClientOption
	if comps.cfg.APIBaseURL != "" {
		clientOpts = append(clientOpts, focus.WithBaseURL(comps.cfg.APIBaseURL))
	}
	client := focus.NewClient(comps.manager, clientOpts...)

	provider := tools.NewProvider(client)
	srv := mcpserver.New(GetVersion(), provider)

	return srv.ServeStdio(cmd.Context())
}
