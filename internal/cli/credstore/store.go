// Package credstore persists the session credential (API token plus a
// cached copy of the user record) so a session survives across CLI
// invocations. Two backends exist: the OS keychain and a plain JSON file
// for environments without one.
package credstore

import (
	"github.com/savora-app/savora/internal/cli/client"
)

// Credential is the persisted session: the bearer token and the cached
// user record it belongs to.
type Credential struct {
	Token string      `json:"token"`
	User  client.User `json:"user"`
}

// Store saves and restores the session credential. Load returns nil when
// no credential is stored; a corrupted entry is discarded, logged and also
// reported as nil. Clear is idempotent.
type Store interface {
	Save(cred Credential) error
	// SaveUser refreshes only the cached user snapshot, leaving the token
	// untouched. A no-op when no credential is stored.
	SaveUser(user client.User) error
	Load() (*Credential, error)
	Clear() error
}
