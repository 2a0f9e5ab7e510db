package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authLogoutCmd clears the stored credential.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored credential",
	Long: `Remove the persisted credential record and forget the in-memory
credential. Clearing an already-empty store is not an error.

Note: this does not revoke the tokens at Teamleader; revoke the
integration's access from the Teamleader marketplace settings if
needed.`,
	RunE: runAuthLogout,
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	comps, err := buildAuthComponents()
	if err != nil {
		return err
	}

	if err := comps.manager.Logout(); err != nil {
		return fmt.Errorf("failed to clear credential store: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared credential store at %s\n", comps.store.Path())
	return nil
}
