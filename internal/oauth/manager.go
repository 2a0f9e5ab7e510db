package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"teamleader-mcp/pkg/logging"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// RefreshBuffer is the margin before expiry at which a refresh
	// becomes due. It absorbs clock skew between us and the provider
	// and the latency of in-flight requests, so a token is never
	// handed out already expired.
	RefreshBuffer = 5 * time.Minute

	// DefaultRefreshAttempts bounds the retry loop for transient
	// refresh failures (network errors, 5xx).
	DefaultRefreshAttempts = 3

	// DefaultRetryDelay is the base delay between refresh attempts.
	// The delay grows linearly with the attempt number.
	DefaultRetryDelay = 2 * time.Second
)

// Store is the persistence contract the token manager writes through
// to. *CredentialStore is the production implementation.
type Store interface {
	Load() *oauth2.Token
	Save(tok *oauth2.Token) error
	Clear() error
	Path() string
}

// RefreshExchanger is the slice of the Exchanger the manager needs.
type RefreshExchanger interface {
	Refresh(ctx context.Context, reg Registration, refreshToken string) (*oauth2.Token, error)
}

// TokenManager owns the process-wide credential. It decides when a
// refresh is due, serializes concurrent refresh attempts into a single
// in-flight operation, retries transient failures up to a bound, and
// writes successful refreshes through to the store.
//
// Construct one instance at startup and pass it explicitly; tests can
// construct independent instances without interference.
type TokenManager struct {
	mu   sync.RWMutex
	cred *oauth2.Token

	reg       Registration
	store     Store
	exchanger RefreshExchanger

	group singleflight.Group

	buffer      time.Duration
	maxAttempts int
	retryDelay  time.Duration
	now         func() time.Time
}

// TokenManagerConfig configures a TokenManager.
type TokenManagerConfig struct {
	// Registration is the OAuth app registration. May be incomplete,
	// in which case the manager runs in static mode.
	Registration Registration

	// Store is the credential persistence backend. May be nil (memory
	// only, used in tests).
	Store Store

	// Exchanger performs refresh round-trips. Required when
	// Registration is complete.
	Exchanger RefreshExchanger

	// RefreshBuffer overrides the proactive refresh margin.
	RefreshBuffer time.Duration

	// MaxAttempts overrides the bounded retry count for transient
	// refresh failures.
	MaxAttempts int

	// RetryDelay overrides the base delay between refresh attempts.
	RetryDelay time.Duration

	// Now overrides the clock. Tests use this to probe the refresh
	// boundary deterministically.
	Now func() time.Time
}

// NewTokenManager creates a TokenManager. Call Initialize before use.
func NewTokenManager(cfg TokenManagerConfig) *TokenManager {
	m := &TokenManager{
		reg:         cfg.Registration,
		store:       cfg.Store,
		exchanger:   cfg.Exchanger,
		buffer:      cfg.RefreshBuffer,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		now:         cfg.Now,
	}
	if m.buffer <= 0 {
		m.buffer = RefreshBuffer
	}
	if m.maxAttempts <= 0 {
		m.maxAttempts = DefaultRefreshAttempts
	}
	if m.retryDelay <= 0 {
		m.retryDelay = DefaultRetryDelay
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Initialize adopts the persisted credential if one exists, otherwise
// the bootstrap credential (typically seeded from the environment).
// bootstrap may be nil. A credential restored without a known expiry
// is treated as due for refresh on first use when refresh capability
// exists: one extra round trip is cheaper than a guaranteed 401.
func (m *TokenManager) Initialize(bootstrap *oauth2.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		if tok := m.store.Load(); tok != nil {
			m.cred = tok
			logging.Info("TokenManager", "Loaded credential from %s (refresh capability: %t)", m.store.Path(), m.canRefreshLocked())
			return
		}
	}

	if bootstrap != nil && bootstrap.AccessToken != "" {
		m.cred = bootstrap
		logging.Info("TokenManager", "Seeded credential from bootstrap configuration (refresh capability: %t)", m.canRefreshLocked())
		return
	}

	logging.Debug("TokenManager", "No persisted or bootstrap credential; authorization required before first call")
}

// Adopt replaces the credential with tok and persists it. Used by the
// interactive authorization flow after a successful code exchange.
func (m *TokenManager) Adopt(tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("cannot adopt empty credential")
	}

	m.mu.Lock()
	m.cred = tok
	store := m.store
	m.mu.Unlock()

	if store != nil {
		if err := store.Save(tok); err != nil {
			return fmt.Errorf("credential adopted but not persisted: %w", err)
		}
	}
	return nil
}

// adoptExternal replaces the in-memory credential without writing it
// back. Used by the credential file watcher when another process (an
// `auth login` run next to a live server) has already persisted it.
func (m *TokenManager) adoptExternal(tok *oauth2.Token) {
	if tok == nil || tok.AccessToken == "" {
		return
	}
	m.mu.Lock()
	m.cred = tok
	m.mu.Unlock()
	logging.Info("TokenManager", "Adopted externally updated credential (expires: %s)", expiryString(tok.Expiry))
}

// AccessToken returns a currently valid access token, resolving any
// overdue refresh first. When a refresh fails transiently but a stale
// credential is still held, the stale token is returned: the provider
// is the authority on whether it still works, and the call wrapper
// recovers from a 401. A definitive rejection surfaces as
// ReauthRequiredError.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	if m.NeedsRefresh() {
		if err := m.Refresh(ctx); err != nil {
			if IsReauthRequired(err) {
				return "", err
			}
			m.mu.RLock()
			stale := m.cred
			m.mu.RUnlock()
			if stale == nil || stale.AccessToken == "" {
				return "", err
			}
			logging.Warn("TokenManager", "Refresh failed, serving previous access token: %v", err)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil || m.cred.AccessToken == "" {
		return "", ErrNotAuthenticated
	}
	return m.cred.AccessToken, nil
}

// NeedsRefresh reports whether a refresh is due: refresh capability
// exists and the expiry is unknown or inside the buffer.
func (m *TokenManager) NeedsRefresh() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.needsRefreshLocked()
}

func (m *TokenManager) needsRefreshLocked() bool {
	if !m.canRefreshLocked() {
		return false
	}
	if m.cred.Expiry.IsZero() {
		// Unknown expiry: assume near-expiry rather than fresh.
		return true
	}
	return m.now().After(m.cred.Expiry.Add(-m.buffer))
}

// CanRefresh reports whether the manager holds both a registration and
// a refresh token. When false the manager runs in static mode, which
// is a supported configuration: the operator rotates the token
// manually.
func (m *TokenManager) CanRefresh() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.canRefreshLocked()
}

func (m *TokenManager) canRefreshLocked() bool {
	return m.reg.Complete() && m.exchanger != nil && m.cred != nil && m.cred.RefreshToken != ""
}

// ForceExpire marks the credential as expired so the next AccessToken
// call refreshes unconditionally. The call wrapper uses this after an
// authentication rejection: the provider's clock is authoritative,
// not ours.
func (m *TokenManager) ForceExpire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return
	}
	m.cred.Expiry = m.now().Add(-time.Second)
	logging.Debug("TokenManager", "Credential force-expired after authentication rejection")
}

// Refresh exchanges the held refresh token for a new credential. At
// most one refresh is in flight at a time: concurrent callers share
// the same outcome instead of issuing duplicate, token-burning
// refresh calls. Transient failures are retried up to the configured
// bound with increasing delay; a definitive rejection surfaces
// immediately as ReauthRequiredError. On failure the previous
// credential is left intact so later calls can try again.
func (m *TokenManager) Refresh(ctx context.Context) error {
	_, err, _ := m.group.Do("refresh", func() (interface{}, error) {
		return nil, m.doRefresh(ctx)
	})
	return err
}

func (m *TokenManager) doRefresh(ctx context.Context) error {
	m.mu.RLock()
	reg := m.reg
	var refreshToken string
	if m.cred != nil {
		refreshToken = m.cred.RefreshToken
	}
	m.mu.RUnlock()

	if !reg.Complete() || m.exchanger == nil || refreshToken == "" {
		return &ReauthRequiredError{Err: errors.New("no refresh capability configured")}
	}

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * m.retryDelay):
			}
		}

		tok, err := m.exchanger.Refresh(ctx, reg, refreshToken)
		if err == nil {
			m.commit(tok)
			return nil
		}
		lastErr = err

		var xerr *ExchangeError
		if errors.As(err, &xerr) && !xerr.Transient() {
			// The grant itself was rejected. Retrying cannot help and
			// risks burning a rotated refresh token.
			logging.Warn("TokenManager", "Refresh token rejected by provider (status %d)", xerr.StatusCode)
			return &ReauthRequiredError{Err: err}
		}

		logging.Warn("TokenManager", "Refresh attempt %d/%d failed: %v", attempt, m.maxAttempts, err)
	}

	return fmt.Errorf("refresh failed after %d attempts: %w", m.maxAttempts, lastErr)
}

// commit installs a freshly refreshed credential and writes it
// through to the store. A persistence failure is logged but does not
// fail the refresh: the in-memory credential stays authoritative for
// the rest of the process lifetime.
func (m *TokenManager) commit(tok *oauth2.Token) {
	m.mu.Lock()
	m.cred = tok
	store := m.store
	m.mu.Unlock()

	if store != nil {
		if err := store.Save(tok); err != nil {
			logging.Warn("TokenManager", "Refreshed credential could not be persisted: %v", err)
		}
	}

	logging.Info("TokenManager", "Access token refreshed (expires: %s)", expiryString(tok.Expiry))
}

// Logout clears the in-memory credential and removes the persisted
// record.
func (m *TokenManager) Logout() error {
	m.mu.Lock()
	m.cred = nil
	store := m.store
	m.mu.Unlock()

	if store != nil {
		return store.Clear()
	}
	return nil
}

// Status is a point-in-time snapshot of the manager for CLI display.
// Token values are wrapped so they cannot leak through formatting.
type Status struct {
	Authenticated bool
	CanRefresh    bool
	Expiry        time.Time
	AccessToken   RedactedToken
	RefreshToken  RedactedToken
	StorePath     string
}

// Status returns a snapshot of the current credential state.
func (m *TokenManager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{CanRefresh: m.canRefreshLocked()}
	if m.store != nil {
		st.StorePath = m.store.Path()
	}
	if m.cred != nil {
		st.Authenticated = m.cred.AccessToken != ""
		st.Expiry = m.cred.Expiry
		st.AccessToken = NewRedactedToken(m.cred.AccessToken)
		st.RefreshToken = NewRedactedToken(m.cred.RefreshToken)
	}
	return st
}

func expiryString(expiry time.Time) string {
	if expiry.IsZero() {
		return "unknown"
	}
	return expiry.Format(time.RFC3339)
}
