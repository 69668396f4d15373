// Package guard gates access to operations that need an authenticated
// session. It holds no state of its own; every decision is derived from a
// session snapshot.
package guard

import (
	"errors"

	"github.com/savora-app/savora/internal/cli/session"
)

// ErrNotAuthenticated is returned when a protected operation is attempted
// without a logged-in session.
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'savora login' first")

// Decision is the outcome of evaluating a session snapshot
type Decision int

const (
	// Allow grants access: a user is present and nothing is in flight.
	Allow Decision = iota
	// Defer means an auth operation (e.g. the startup restore) is still in
	// flight and no decision should be made yet.
	Defer
	// Deny redirects to the login entry point.
	Deny
)

// Evaluate decides whether a protected operation may proceed. While the
// session is loading the answer is Defer, never Deny: deciding mid-restore
// would bounce users who are about to be restored.
func Evaluate(st session.State) Decision {
	if st.Loading {
		return Defer
	}
	if st.LoggedIn() {
		return Allow
	}
	return Deny
}

// RequireSession blocks until the session settles, then returns nil when
// it is authenticated and ErrNotAuthenticated otherwise. Intended as the
// entry check of protected commands.
func RequireSession(m *session.Manager) error {
	decided := make(chan Decision, 1)

	cancel := m.Subscribe(func(st session.State) {
		d := Evaluate(st)
		if d == Defer {
			return
		}
		select {
		case decided <- d:
		default:
		}
	})
	defer cancel()

	if <-decided == Allow {
		return nil
	}
	return ErrNotAuthenticated
}
