package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultAuthorizeURL is the Teamleader Focus authorization endpoint.
	DefaultAuthorizeURL = "https://focus.teamleader.eu/oauth2/authorize"

	// DefaultTokenURL is the Teamleader Focus token endpoint.
	DefaultTokenURL = "https://focus.teamleader.eu/oauth2/access_token"

	// DefaultHTTPTimeout is the default timeout for token endpoint requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Exchanger performs the two token-endpoint round-trips: exchanging an
// authorization code for a credential, and exchanging a refresh token
// for a rotated credential. It holds no credential state and applies
// no retry or persistence policy; that belongs to the TokenManager.
type Exchanger struct {
	httpClient   *http.Client
	authorizeURL string
	tokenURL     string
}

// ExchangerOption configures the Exchanger.
type ExchangerOption func(*Exchanger)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ExchangerOption {
	return func(e *Exchanger) {
		e.httpClient = httpClient
	}
}

// WithEndpoints overrides the provider endpoints. Used in tests and
// for pointing at a sandbox environment.
func WithEndpoints(authorizeURL, tokenURL string) ExchangerOption {
	return func(e *Exchanger) {
		if authorizeURL != "" {
			e.authorizeURL = authorizeURL
		}
		if tokenURL != "" {
			e.tokenURL = tokenURL
		}
	}
}

// NewExchanger creates a new Exchanger against the Teamleader Focus
// endpoints.
func NewExchanger(opts ...ExchangerOption) *Exchanger {
	e := &Exchanger{
		httpClient:   &http.Client{Timeout: DefaultHTTPTimeout},
		authorizeURL: DefaultAuthorizeURL,
		tokenURL:     DefaultTokenURL,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// AuthorizationURL constructs the browser-facing authorization URL for
// the code grant. state is the anti-CSRF nonce verified on callback.
func (e *Exchanger) AuthorizationURL(reg Registration, state string) (string, error) {
	authURL, err := url.Parse(e.authorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	query := authURL.Query()
	query.Set("response_type", "code")
	query.Set("client_id", reg.ClientID)
	query.Set("redirect_uri", reg.RedirectURI)
	if state != "" {
		query.Set("state", state)
	}

	authURL.RawQuery = query.Encode()
	return authURL.String(), nil
}

// ExchangeCode exchanges an authorization code for a credential.
func (e *Exchanger) ExchangeCode(ctx context.Context, reg Registration, code string) (*oauth2.Token, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {reg.RedirectURI},
		"client_id":     {reg.ClientID},
		"client_secret": {reg.ClientSecret},
	}

	return e.doTokenRequest(ctx, data)
}

// Refresh exchanges a refresh token for a new credential. Teamleader
// rotates refresh tokens: the returned credential carries a new
// refresh token and the presented one is invalidated.
func (e *Exchanger) Refresh(ctx context.Context, reg Registration, refreshToken string) (*oauth2.Token, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {reg.ClientID},
		"client_secret": {reg.ClientSecret},
	}

	return e.doTokenRequest(ctx, data)
}

// tokenResponse is the token endpoint's success payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// doTokenRequest performs a token endpoint request and parses the result.
func (e *Exchanger) doTokenRequest(ctx context.Context, data url.Values) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ExchangeError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}

	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return token, nil
}
