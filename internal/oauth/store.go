package oauth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"teamleader-mcp/pkg/logging"

	"golang.org/x/oauth2"
)

// DefaultCredentialsDir is the default directory for the credential
// record, relative to the user's home directory.
const DefaultCredentialsDir = ".config/teamleader-mcp"

// DefaultCredentialsFileName is the name of the credential record file.
const DefaultCredentialsFileName = "credentials.json"

// DefaultCredentialsPath returns the default location of the credential
// record.
func DefaultCredentialsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultCredentialsDir, DefaultCredentialsFileName), nil
}

// CredentialStore persists a single credential record to a JSON file.
//
// SECURITY: the record contains bearer secrets. The file is written
// with 0600 permissions and its directory is created with 0700.
// Token values are never logged.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store backed by the given path. An
// empty path selects the default per-user location.
func NewCredentialStore(path string) (*CredentialStore, error) {
	if path == "" {
		defaultPath, err := DefaultCredentialsPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return &CredentialStore{path: path}, nil
}

// Path returns the location of the backing record.
func (s *CredentialStore) Path() string {
	return s.path
}

// Load reads the persisted credential. It returns nil when the record
// is missing or unreadable: a cold start must never fail on a corrupt
// or absent file.
func (s *CredentialStore) Load() *oauth2.Token {
	// #nosec G304 -- path comes from configuration, not request input
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("CredentialStore", "Failed to read credential record at %s: %v", s.path, err)
		}
		return nil
	}

	var record storedCredential
	if err := json.Unmarshal(data, &record); err != nil {
		logging.Warn("CredentialStore", "Credential record at %s is not parseable, treating as absent: %v", s.path, err)
		return nil
	}
	if record.AccessToken == "" {
		return nil
	}

	return record.toToken()
}

// Save serializes the credential and overwrites the backing record.
// The record is always replaced whole; concurrent saves are last-write-
// wins, which is sufficient because the token manager allows only one
// refresh in flight at a time.
func (s *CredentialStore) Save(tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("refusing to persist empty credential")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := json.MarshalIndent(newStoredCredential(tok), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential record: %w", err)
	}

	logging.Debug("CredentialStore", "Persisted credential record to %s", s.path)
	return nil
}

// Clear removes the backing record. Removing an absent record is a
// success, not an error.
func (s *CredentialStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
