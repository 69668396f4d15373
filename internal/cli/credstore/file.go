package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/savora-app/savora/internal/cli/client"
)

const (
	configDirName       = "savora"
	credentialsFileName = "credentials.json"
)

// FileStore keeps the credential in a JSON file, by default
// ~/.config/savora/credentials.json. Used when no OS keychain is
// available (headless machines, CI).
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFile creates a file-backed credential store at the given path
func NewFile(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// DefaultCredentialsPath returns the default location of the credentials file
func DefaultCredentialsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, credentialsFileName), nil
}

// Save writes the credential. The file is written to a temp path and
// renamed into place so a reader never observes a half-written credential.
func (s *FileStore) Save(cred Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, credentialsFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// SaveUser refreshes the cached user record, keeping the stored token
func (s *FileStore) SaveUser(user client.User) error {
	cred, err := s.Load()
	if err != nil {
		return err
	}
	if cred == nil {
		return nil
	}
	cred.User = user
	return s.Save(*cred)
}

// Load reads the stored credential. Returns nil when the file does not
// exist. A file that cannot be parsed, or that is missing the token or the
// user record, is discarded and reported as absent.
func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		s.log.Warn().Err(err).Msg("Credentials file is corrupted, discarding it")
		_ = s.Clear()
		return nil, nil
	}

	if cred.Token == "" || cred.User.ID == "" {
		s.log.Warn().Msg("Credentials file is incomplete, discarding it")
		_ = s.Clear()
		return nil, nil
	}

	return &cred, nil
}

// Clear removes the credentials file. Clearing an empty store is a no-op.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
