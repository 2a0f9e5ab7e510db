package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamleader-mcp/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultAuthTimeout bounds how long the interactive flow waits for a
// human to complete the browser round-trip.
const DefaultAuthTimeout = 5 * time.Minute

// FlowConfig configures an interactive authorization-code flow.
type FlowConfig struct {
	// Registration is the OAuth app registration. ClientID and
	// ClientSecret are required. An empty RedirectURI is filled in
	// with the local callback URL.
	Registration Registration

	// Exchanger performs the code exchange. Required.
	Exchanger *Exchanger

	// CallbackPort is the local callback port (0 = default).
	CallbackPort int

	// Timeout bounds the wait for the callback (0 = DefaultAuthTimeout).
	Timeout time.Duration

	// OpenBrowser launches the user's browser. Nil uses OpenBrowser;
	// tests substitute a function that drives the callback directly.
	OpenBrowser func(url string) error

	// OnAuthURL, if set, is called with the authorization URL before
	// waiting. The CLI uses it to print the URL as a manual fallback.
	OnAuthURL func(url string)
}

// RunAuthorizationFlow drives a complete interactive authorization:
// start a short-lived localhost listener, send the user's browser to
// the provider, wait (bounded) for a single valid callback, verify the
// anti-CSRF state, exchange the code, and tear the listener down
// unconditionally.
func RunAuthorizationFlow(ctx context.Context, cfg FlowConfig) (*oauth2.Token, error) {
	if !cfg.Registration.Complete() {
		return nil, errors.New("client id and client secret are required for interactive authorization")
	}
	if cfg.Exchanger == nil {
		return nil, errors.New("exchanger is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}
	openBrowser := cfg.OpenBrowser
	if openBrowser == nil {
		openBrowser = OpenBrowser
	}

	srv := NewCallbackServer(cfg.CallbackPort)
	redirectURI, err := srv.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer srv.Stop()

	reg := cfg.Registration
	if reg.RedirectURI == "" {
		reg.RedirectURI = redirectURI
	}

	state := uuid.NewString()
	authURL, err := cfg.Exchanger.AuthorizationURL(reg, state)
	if err != nil {
		return nil, err
	}

	if cfg.OnAuthURL != nil {
		cfg.OnAuthURL(authURL)
	}

	if err := openBrowser(authURL); err != nil {
		// Not fatal: the URL has been surfaced for manual use.
		logging.Warn("Flow", "Could not open browser automatically: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := srv.WaitForCallback(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s waiting for authorization to complete", timeout)
		}
		return nil, err
	}

	if result.IsError() {
		if result.ErrorDescription != "" {
			return nil, fmt.Errorf("authorization failed: %s (%s)", result.Error, result.ErrorDescription)
		}
		return nil, fmt.Errorf("authorization failed: %s", result.Error)
	}
	if result.State != state {
		return nil, errors.New("authorization callback state mismatch, possible CSRF; aborting")
	}
	if result.Code == "" {
		return nil, errors.New("authorization callback carried no code")
	}

	token, err := cfg.Exchanger.ExchangeCode(ctx, reg, result.Code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	logging.Info("Flow", "Authorization completed (token expires: %s)", expiryString(token.Expiry))
	return token, nil
}
