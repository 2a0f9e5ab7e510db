package focus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"teamleader-mcp/pkg/logging"
)

// DefaultBaseURL is the Teamleader Focus API base URL.
const DefaultBaseURL = "https://api.focus.teamleader.eu"

// DefaultHTTPTimeout is the default timeout for API requests.
const DefaultHTTPTimeout = 30 * time.Second

// TokenSource is the slice of the token manager the client needs: a
// currently valid access token, whether a forced refresh is even
// possible, and the ability to force one after a rejection.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	CanRefresh() bool
	ForceExpire()
}

// Envelope is the generic success payload: a data document and
// optional paging/counting metadata.
type Envelope struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta,omitempty"`
}

// Client calls Focus API actions with bearer authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (tests, sandbox).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Focus API client drawing tokens from the given
// source.
func NewClient(tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		tokens:     tokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Call executes one Focus action. body is marshalled as the JSON
// request body (nil sends an empty object); a non-nil out receives the
// decoded response.
//
// On an authentication rejection, and only when the token source can
// refresh, the credential is force-expired, a refresh is resolved
// through AccessToken, and the call is retried exactly once. A second
// rejection, or any other failure, propagates to the caller.
func (c *Client) Call(ctx context.Context, action string, body interface{}, out interface{}) error {
	err := c.do(ctx, action, body, out)
	if err == nil {
		return nil
	}

	if !IsAuthRejected(err) || !c.tokens.CanRefresh() {
		return err
	}

	logging.Debug("Focus", "Call %s rejected with 401, forcing refresh and retrying once", action)
	c.tokens.ForceExpire()
	if _, rerr := c.tokens.AccessToken(ctx); rerr != nil {
		return rerr
	}

	return c.do(ctx, action, body, out)
}

// do performs a single authenticated POST of action.
func (c *Client) do(ctx context.Context, action string, body interface{}, out interface{}) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	payload := []byte("{}")
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", action, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+action, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse %s response: %w", action, err)
		}
	}

	return nil
}

// parseAPIError builds an APIError from a failure response, falling
// back to the raw body when the error document is not parseable.
func parseAPIError(status int, body []byte) *APIError {
	var doc struct {
		Errors []ErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &doc); err == nil && len(doc.Errors) > 0 {
		return &APIError{StatusCode: status, Errors: doc.Errors}
	}
	return &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}
}
