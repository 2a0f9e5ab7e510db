package cmd

import (
	"teamleader-mcp/internal/config"
	"teamleader-mcp/internal/oauth"

	"github.com/spf13/cobra"
)

// authCmd groups the credential lifecycle commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Teamleader Focus credentials",
	Long: `Manage the stored Teamleader Focus credential.

Subcommands run the interactive OAuth authorization flow, show the
state of the stored credential, and clear it.`,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

// authComponents bundles the pieces every auth subcommand needs.
type authComponents struct {
	cfg       config.Config
	store     *oauth.CredentialStore
	exchanger *oauth.Exchanger
	manager   *oauth.TokenManager
}

// buildAuthComponents loads configuration and constructs the store,
// exchanger and token manager the way the serve command does, so CLI
// and server always agree on locations and endpoints.
func buildAuthComponents() (*authComponents, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := oauth.NewCredentialStore(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	exchanger := oauth.NewExchanger(oauth.WithEndpoints(cfg.AuthorizeURL, cfg.TokenURL))

	manager := oauth.NewTokenManager(oauth.TokenManagerConfig{
		Registration: cfg.Registration(),
		Store:        store,
		Exchanger:    exchanger,
	})
	manager.Initialize(cfg.BootstrapToken())

	return &authComponents{
		cfg:       cfg,
		store:     store,
		exchanger: exchanger,
		manager:   manager,
	}, nil
}
