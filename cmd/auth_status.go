package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// authStatusCmd shows the state of the stored credential.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential state",
	Long: `Show whether a credential is available, where it is stored, when the
access token expires, and whether automatic refresh is possible.

Exits with code 2 when no credential is available, so scripts can probe
authentication state.`,
	RunE: runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	comps, err := buildAuthComponents()
	if err != nil {
		return err
	}

	st := comps.manager.Status()

	expiry := "unknown"
	if !st.Expiry.IsZero() {
		expiry = st.Expiry.Format(time.RFC3339)
		if time.Now().After(st.Expiry) {
			expiry += " (expired)"
		}
	}

	mode := "static token (no automatic refresh)"
	if st.CanRefresh {
		mode = "automatic refresh"
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendRows([]table.Row{
		{"Authenticated", st.Authenticated},
		{"Access token", st.AccessToken.String()},
		{"Refresh token", st.RefreshToken.String()},
		{"Expires", expiry},
		{"Mode", mode},
		{"Store", st.StorePath},
	})
	t.Render()

	if !st.Authenticated {
		return fmt.Errorf("no credential available: %w", errAuthRequired)
	}
	return nil
}
