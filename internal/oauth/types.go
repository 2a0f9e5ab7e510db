package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// Registration holds the operator-supplied OAuth app registration
// (an "integration" in Teamleader terms). It is immutable for the
// process lifetime. Without it the token manager runs in static mode:
// the configured access token is served as-is and never refreshed.
type Registration struct {
	// ClientID is the integration's client id.
	ClientID string

	// ClientSecret is the integration's client secret.
	ClientSecret string

	// RedirectURI must match one of the redirect URIs configured on the
	// integration. For the interactive flow this is the local callback
	// URL.
	RedirectURI string
}

// Complete reports whether the registration carries the fields needed
// to talk to the token endpoint.
func (r Registration) Complete() bool {
	return r.ClientID != "" && r.ClientSecret != ""
}

// storedCredential is the on-disk projection of a credential. The
// shape is stable; there is no schema versioning. A record that fails
// to parse is treated as absent.
type storedCredential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func (c *storedCredential) toToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

func newStoredCredential(tok *oauth2.Token) *storedCredential {
	return &storedCredential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		CreatedAt:    time.Now(),
	}
}
