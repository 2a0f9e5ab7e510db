package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackServerDeliversCode(t *testing.T) {
	srv := NewCallbackServer(18731)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redirectURI, err := srv.Start(ctx)
	require.NoError(t, err)
	defer srv.Stop()

	assert.Equal(t, "http://localhost:18731/callback", redirectURI)

	resp, err := http.Get(redirectURI + "?code=the-code&state=the-state")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.NotContains(t, string(body), "the-code", "the code must not be echoed back to the browser")

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	result, err := srv.WaitForCallback(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, "the-code", result.Code)
	assert.Equal(t, "the-state", result.State)
	assert.False(t, result.IsError())
}

func TestCallbackServerDeliversProviderError(t *testing.T) {
	srv := NewCallbackServer(18732)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redirectURI, err := srv.Start(ctx)
	require.NoError(t, err)
	defer srv.Stop()

	query := url.Values{
		"error":             {"access_denied"},
		"error_description": {"The user denied the request"},
	}
	resp, err := http.Get(redirectURI + "?" + query.Encode())
	require.NoError(t, err)
	resp.Body.Close()

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	result, err := srv.WaitForCallback(waitCtx)
	require.NoError(t, err)
	assert.True(t, result.IsError())
	assert.Equal(t, "access_denied", result.Error)
	assert.Equal(t, "The user denied the request", result.ErrorDescription)
}

func TestCallbackServerAcceptsOnlyFirstCallback(t *testing.T) {
	srv := NewCallbackServer(18733)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redirectURI, err := srv.Start(ctx)
	require.NoError(t, err)
	defer srv.Stop()

	first, err := http.Get(redirectURI + "?code=first&state=s")
	require.NoError(t, err)
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(redirectURI + "?code=second&state=s")
	if err == nil {
		assert.Equal(t, http.StatusBadRequest, second.StatusCode)
		second.Body.Close()
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	result, err := srv.WaitForCallback(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, "first", result.Code)
}

func TestCallbackServerWaitHonorsDeadline(t *testing.T) {
	srv := NewCallbackServer(18734)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := srv.Start(ctx)
	require.NoError(t, err)
	defer srv.Stop()

	waitCtx, waitCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer waitCancel()

	_, err = srv.WaitForCallback(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallbackServerPortInUse(t *testing.T) {
	first := NewCallbackServer(18735)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := first.Start(ctx)
	require.NoError(t, err)
	defer first.Stop()

	second := NewCallbackServer(18735)
	_, err = second.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprint(18735))
}
