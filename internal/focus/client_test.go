package focus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokens hands out scripted access tokens and records refresh
// interactions.
type fakeTokens struct {
	mu           sync.Mutex
	tokens       []string
	idx          int
	canRefresh   bool
	forceExpired int
	accessErr    error
}

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accessErr != nil {
		return "", f.accessErr
	}
	tok := f.tokens[f.idx]
	if f.idx < len(f.tokens)-1 {
		f.idx++
	}
	return tok, nil
}

func (f *fakeTokens) CanRefresh() bool { return f.canRefresh }

func (f *fakeTokens) ForceExpire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceExpired++
}

func TestCallSendsAuthenticatedPost(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(`{"data":{"id":"c1"}}`))
	}))
	defer srv.Close()

	client := NewClient(&fakeTokens{tokens: []string{"tok-1"}}, WithBaseURL(srv.URL))

	var env Envelope
	err := client.Call(context.Background(), "contacts.info", map[string]string{"id": "c1"}, &env)
	require.NoError(t, err)

	assert.Equal(t, "/contacts.info", gotPath)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.JSONEq(t, `{"id":"c1"}`, gotBody)
	assert.JSONEq(t, `{"id":"c1"}`, string(env.Data))
}

func TestCallNilBodySendsEmptyObject(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(&fakeTokens{tokens: []string{"tok"}}, WithBaseURL(srv.URL))
	require.NoError(t, client.Call(context.Background(), "users.me", nil, nil))
	assert.Equal(t, "{}", gotBody)
}

func TestCallRetriesOnceAfterAuthRejection(t *testing.T) {
	var requests int
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		auths = append(auths, r.Header.Get("Authorization"))
		if requests == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"title":"Unauthorized","status":401}]}`))
			return
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{tokens: []string{"stale-tok", "fresh-tok"}, canRefresh: true}
	client := NewClient(tokens, WithBaseURL(srv.URL))

	var env Envelope
	err := client.Call(context.Background(), "deals.list", nil, &env)
	require.NoError(t, err)

	assert.Equal(t, 2, requests, "exactly one retry after a 401")
	assert.Equal(t, 1, tokens.forceExpired)
	assert.Equal(t, []string{"Bearer stale-tok", "Bearer fresh-tok"}, auths)
}

func TestCallSecondRejectionPropagates(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"title":"Unauthorized","status":401}]}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{tokens: []string{"tok"}, canRefresh: true}
	client := NewClient(tokens, WithBaseURL(srv.URL))

	err := client.Call(context.Background(), "deals.list", nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuthRejected(err))
	assert.Equal(t, 2, requests, "never more than one retry")
}

func TestCallNoRetryWithoutRefreshCapability(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{tokens: []string{"static-tok"}}
	client := NewClient(tokens, WithBaseURL(srv.URL))

	err := client.Call(context.Background(), "users.me", nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuthRejected(err))
	assert.Equal(t, 1, requests)
	assert.Zero(t, tokens.forceExpired)
}

func TestCallNoRetryOnNonAuthFailure(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"title":"Invalid filter","detail":"unknown field","status":400}]}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{tokens: []string{"tok"}, canRefresh: true}
	client := NewClient(tokens, WithBaseURL(srv.URL))

	err := client.Call(context.Background(), "contacts.list", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, requests)
	assert.Zero(t, tokens.forceExpired)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Invalid filter")
	assert.Contains(t, apiErr.Error(), "unknown field")
	assert.False(t, apiErr.AuthRejected())
}

func TestCallRefreshFailurePropagates(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	refreshErr := errors.New("refresh token burned")
	tokens := &fakeTokens{tokens: []string{"tok"}, canRefresh: true}
	client := NewClient(tokens, WithBaseURL(srv.URL))

	// First do() consumed the only good token; make the post-expiry
	// AccessToken fail like an exhausted refresh would.
	first := client.Call(context.Background(), "users.me", nil, nil)
	require.Error(t, first)

	tokens.accessErr = refreshErr
	err := client.Call(context.Background(), "users.me", nil, nil)
	assert.ErrorIs(t, err, refreshErr)
}

func TestParseAPIErrorFallsBackToRawBody(t *testing.T) {
	apiErr := parseAPIError(http.StatusBadGateway, []byte("upstream exploded\n"))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Errors)
	assert.Contains(t, apiErr.Error(), "upstream exploded")
}

func TestEnvelopeCarriesMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"a"}],"meta":{"page":{"size":20,"number":1}}}`))
	}))
	defer srv.Close()

	client := NewClient(&fakeTokens{tokens: []string{"tok"}}, WithBaseURL(srv.URL))

	var env Envelope
	require.NoError(t, client.Call(context.Background(), "contacts.list", nil, &env))

	var meta struct {
		Page struct {
			Size int `json:"size"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.Equal(t, 20, meta.Page.Size)
}
