package credstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"

	"github.com/savora-app/savora/internal/cli/client"
)

const (
	service  = "savora-cli"
	tokenKey = "token"
	userKey  = "user"
)

// KeyringStore keeps the credential in the OS keychain/credential manager
// under the keys "token" and "user".
type KeyringStore struct {
	log zerolog.Logger
}

// NewKeyring creates a keychain-backed credential store
func NewKeyring(log zerolog.Logger) *KeyringStore {
	return &KeyringStore{log: log}
}

// Save persists the credential. The user record is written first so a
// concurrent Load never observes a token without its user: Load requires
// both keys to be present.
func (s *KeyringStore) Save(cred Credential) error {
	userData, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}

	if err := keyring.Set(service, userKey, string(userData)); err != nil {
		return fmt.Errorf("failed to save user record: %w", err)
	}
	if err := keyring.Set(service, tokenKey, cred.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// SaveUser refreshes the cached user record without touching the token
func (s *KeyringStore) SaveUser(user client.User) error {
	if _, err := keyring.Get(service, tokenKey); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read token: %w", err)
	}

	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	if err := keyring.Set(service, userKey, string(userData)); err != nil {
		return fmt.Errorf("failed to save user record: %w", err)
	}
	return nil
}

// Load retrieves the stored credential. Returns nil when absent. A
// credential with a missing or unparseable user record is discarded and
// reported as absent.
func (s *KeyringStore) Load() (*Credential, error) {
	token, err := keyring.Get(service, tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	userData, err := keyring.Get(service, userKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			// Token without user record: treat as corrupted and start over.
			s.log.Warn().Msg("Stored token has no user record, discarding credential")
			_ = s.Clear()
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}

	var user client.User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		s.log.Warn().Err(err).Msg("Stored user record is corrupted, discarding credential")
		_ = s.Clear()
		return nil, nil
	}

	return &Credential{Token: token, User: user}, nil
}

// Clear removes the credential. Clearing an empty store is a no-op.
func (s *KeyringStore) Clear() error {
	for _, key := range []string{tokenKey, userKey} {
		if err := keyring.Delete(service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}
