package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TEAMLEADER_CLIENT_ID", "TEAMLEADER_CLIENT_SECRET", "TEAMLEADER_REDIRECT_URI",
		"TEAMLEADER_ACCESS_TOKEN", "TEAMLEADER_REFRESH_TOKEN", "TEAMLEADER_API_URL",
		"TEAMLEADER_AUTH_URL", "TEAMLEADER_TOKEN_URL", "TEAMLEADER_CREDENTIALS_FILE",
		"TEAMLEADER_CALLBACK_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
	assert.False(t, cfg.Registration().Complete())
	assert.Nil(t, cfg.BootstrapToken())
}

func TestLoadParsesYAML(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
clientId: file-client
clientSecret: file-secret
apiBaseUrl: https://sandbox.example.com
callbackPort: 9999
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-client", cfg.ClientID)
	assert.Equal(t, "file-secret", cfg.ClientSecret)
	assert.Equal(t, "https://sandbox.example.com", cfg.APIBaseURL)
	assert.Equal(t, 9999, cfg.CallbackPort)
	assert.True(t, cfg.Registration().Complete())
}

func TestLoadMalformedFileIsAnError(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "clientId: [not: closed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
clientId: file-client
accessToken: file-token
`)

	t.Setenv("TEAMLEADER_CLIENT_ID", "env-client")
	t.Setenv("TEAMLEADER_ACCESS_TOKEN", "env-token")
	t.Setenv("TEAMLEADER_REFRESH_TOKEN", "env-refresh")
	t.Setenv("TEAMLEADER_CALLBACK_PORT", "8123")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-client", cfg.ClientID)
	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.Equal(t, 8123, cfg.CallbackPort)

	tok := cfg.BootstrapToken()
	require.NotNil(t, tok)
	assert.Equal(t, "env-token", tok.AccessToken)
	assert.Equal(t, "env-refresh", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.IsZero())
}

func TestInvalidCallbackPortEnvIsIgnored(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "callbackPort: 7000")
	t.Setenv("TEAMLEADER_CALLBACK_PORT", "not-a-port")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.CallbackPort)
}
