package cmd

import (
	"fmt"
	"os"
	"time"

	"teamleader-mcp/internal/oauth"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	loginTimeout time.Duration
	loginNoOpen  bool
)

// authLoginCmd runs the interactive OAuth authorization flow.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize against Teamleader Focus",
	Long: `Run the browser-based OAuth authorization flow.

A short-lived local callback server is started, your browser is sent to
the Teamleader authorization page, and the resulting credential is
persisted for use by 'teamleader-mcp serve'.

The integration's client id and secret must be configured (config file
or TEAMLEADER_CLIENT_ID / TEAMLEADER_CLIENT_SECRET).`,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().DurationVar(&loginTimeout, "timeout", oauth.DefaultAuthTimeout, "How long to wait for the browser flow to complete")
	authLoginCmd.Flags().BoolVar(&loginNoOpen, "no-open", false, "Print the authorization URL instead of opening a browser")
	authCmd.AddCommand(authLoginCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	comps, err := buildAuthComponents()
	if err != nil {
		return err
	}

	if !comps.cfg.Registration().Complete() {
		return fmt.Errorf("client id and client secret are not configured: %w", errAuthRequired)
	}

	flowCfg := oauth.FlowConfig{
		Registration: comps.cfg.Registration(),
		Exchanger:    comps.exchanger,
		CallbackPort: comps.cfg.CallbackPort,
		Timeout:      loginTimeout,
		OnAuthURL: func(url string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Open the following URL in your browser if it does not open automatically:\n\n  %s\n\n", url)
		},
	}
	if loginNoOpen {
		flowCfg.OpenBrowser = func(string) error { return nil }
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Waiting for authorization in the browser..."
	s.Start()

	token, err := oauth.RunAuthorizationFlow(cmd.Context(), flowCfg)
	s.Stop()
	if err != nil {
		return &authFailedError{err: err}
	}

	if err := comps.manager.Adopt(token); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Authenticated. Credential stored at %s\n", comps.store.Path())
	if !token.Expiry.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Access token expires at %s\n", token.Expiry.Format(time.RFC3339))
	}
	return nil
}
