// Package config loads the application configuration: a YAML file in
// the user's config directory overlaid by environment variables. A
// missing file is not an error; every setting has a usable default or
// can come from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"teamleader-mcp/internal/oauth"
	"teamleader-mcp/pkg/logging"

	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/teamleader-mcp"
	configFileName = "config.yaml"
)

// Config holds all operator-supplied settings.
type Config struct {
	// ClientID and ClientSecret identify the Teamleader integration.
	// Without both, the process runs in static-token mode.
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`

	// RedirectURI overrides the redirect URI registered on the
	// integration. Empty means the local callback URL.
	RedirectURI string `yaml:"redirectUri"`

	// AccessToken and RefreshToken bootstrap the token manager when no
	// credential record is persisted yet.
	AccessToken  string `yaml:"accessToken"`
	RefreshToken string `yaml:"refreshToken"`

	// APIBaseURL, AuthorizeURL and TokenURL override the provider
	// endpoints (sandbox environments, tests).
	APIBaseURL   string `yaml:"apiBaseUrl"`
	AuthorizeURL string `yaml:"authorizeUrl"`
	TokenURL     string `yaml:"tokenUrl"`

	// CredentialsFile overrides the credential record location.
	CredentialsFile string `yaml:"credentialsFile"`

	// CallbackPort is the local port for the interactive flow.
	CallbackPort int `yaml:"callbackPort"`
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// Load reads the configuration file at path (empty selects the default
// location) and overlays environment variables on top. A missing file
// yields defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config at %s: %w", path, err)
		}
		logging.Debug("Config", "Loaded configuration from %s", path)
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("Config", "No config file at %s, using defaults", path)
	default:
		return Config{}, fmt.Errorf("failed to read config at %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays TEAMLEADER_* environment variables. The
// environment wins over the file so containerized deployments can
// override without editing files.
func (c *Config) applyEnv() {
	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	overlay(&c.ClientID, "TEAMLEADER_CLIENT_ID")
	overlay(&c.ClientSecret, "TEAMLEADER_CLIENT_SECRET")
	overlay(&c.RedirectURI, "TEAMLEADER_REDIRECT_URI")
	overlay(&c.AccessToken, "TEAMLEADER_ACCESS_TOKEN")
	overlay(&c.RefreshToken, "TEAMLEADER_REFRESH_TOKEN")
	overlay(&c.APIBaseURL, "TEAMLEADER_API_URL")
	overlay(&c.AuthorizeURL, "TEAMLEADER_AUTH_URL")
	overlay(&c.TokenURL, "TEAMLEADER_TOKEN_URL")
	overlay(&c.CredentialsFile, "TEAMLEADER_CREDENTIALS_FILE")

	if v := os.Getenv("TEAMLEADER_CALLBACK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.CallbackPort = port
		} else {
			logging.Warn("Config", "Ignoring invalid TEAMLEADER_CALLBACK_PORT value %q", v)
		}
	}
}

// Registration builds the OAuth app registration from the config.
func (c Config) Registration() oauth.Registration {
	return oauth.Registration{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
	}
}

// BootstrapToken builds the environment-seeded credential, or nil when
// no access token was supplied. The expiry is left unknown; the token
// manager treats an unknown expiry as near-expiry when it can refresh.
func (c Config) BootstrapToken() *oauth2.Token {
	if c.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
}
