package oauth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	return store
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, store.Save(testToken("access", "refresh", expiry)))

	loaded := store.Load()
	require.NotNil(t, loaded)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.Equal(t, "Bearer", loaded.TokenType)
	assert.True(t, loaded.Expiry.Equal(expiry))
}

func TestCredentialStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)
	assert.Nil(t, store.Load())
}

func TestCredentialStoreLoadCorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not json {"), 0600))

	assert.Nil(t, store.Load())
}

func TestCredentialStoreLoadEmptyAccessToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"refresh_token":"only"}`), 0600))

	assert.Nil(t, store.Load())
}

func TestCredentialStoreSaveRefusesEmptyCredential(t *testing.T) {
	store := newTestStore(t)

	assert.Error(t, store.Save(nil))
	assert.Error(t, store.Save(testToken("", "refresh", time.Time{})))
}

func TestCredentialStoreSaveCreatesDirAndRestrictsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")
	store, err := NewCredentialStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(testToken("access", "refresh", time.Time{})))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestCredentialStoreSaveOverwritesWhole(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testToken("first", "first-refresh", time.Time{})))
	require.NoError(t, store.Save(testToken("second", "", time.Time{})))

	loaded := store.Load()
	require.NotNil(t, loaded)
	assert.Equal(t, "second", loaded.AccessToken)
	assert.Empty(t, loaded.RefreshToken, "stale fields must not survive an overwrite")
}

func TestCredentialStoreClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testToken("access", "", time.Time{})))

	require.NoError(t, store.Clear())
	assert.Nil(t, store.Load())
	require.NoError(t, store.Clear())
}
