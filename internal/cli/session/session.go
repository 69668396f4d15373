// Package session owns the client-side authentication state: the current
// user, the in-flight flag, and the synchronization with the credential
// store. All transitions go through the Manager, which is the single
// writer of the store.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/savora-app/savora/internal/cli/client"
	"github.com/savora-app/savora/internal/cli/credstore"
)

// ErrSessionBusy is returned when a login or register is attempted while
// another one is still in flight. In-flight operations are never queued.
var ErrSessionBusy = errors.New("another authentication attempt is in progress")

// AuthError is the normalized failure surfaced by Login and Register. The
// underlying transport or server error is logged, not exposed: callers
// must not depend on backend wording.
type AuthError struct {
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// API is the slice of the REST layer the session manager drives
type API interface {
	Login(creds client.Credentials) (*client.AuthResult, error)
	Register(reg client.Registration) (*client.AuthResult, error)
}

// State is a snapshot of the session published to subscribers
type State struct {
	User    *client.User
	Loading bool
}

// LoggedIn reports whether the snapshot carries an authenticated user
func (s State) LoggedIn() bool {
	return s.User != nil
}

// UserPatch carries a partial user update for UpdateUser. Nil fields are
// left unchanged.
type UserPatch struct {
	Name      *string
	Email     *string
	Bio       *string
	Location  *string
	AvatarURL *string
}

// Manager tracks the authenticated user for the lifetime of the process
// and keeps the credential store in sync. Create one per application with
// New; it restores any persisted session before returning.
type Manager struct {
	mu          sync.Mutex
	api         API
	store       credstore.Store
	log         zerolog.Logger
	user        *client.User
	token       string
	loading     bool
	subscribers map[int]func(State)
	nextSubID   int
}

// New creates a session manager and restores the persisted credential, if
// any. The restore is optimistic: a stored credential is trusted without a
// network round-trip, except that a JWT whose expiry has passed is
// discarded locally.
func New(api API, store credstore.Store, log zerolog.Logger) *Manager {
	m := &Manager{
		api:         api,
		store:       store,
		log:         log,
		subscribers: make(map[int]func(State)),
	}
	m.restore()
	return m
}

// restore loads the persisted credential and moves the session to logged
// in or logged out. Corruption is absorbed by the store; any load failure
// here degrades to logged out.
func (m *Manager) restore() {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	cred, err := m.store.Load()

	m.mu.Lock()
	defer func() {
		m.mu.Unlock()
		m.notify()
	}()
	m.loading = false

	if err != nil {
		m.log.Warn().Err(err).Msg("Failed to load stored credential, starting logged out")
		return
	}
	if cred == nil {
		return
	}
	if tokenExpired(cred.Token) {
		m.log.Info().Msg("Stored token has expired, discarding credential")
		if err := m.store.Clear(); err != nil {
			m.log.Warn().Err(err).Msg("Failed to clear expired credential")
		}
		return
	}

	user := cred.User
	m.user = &user
	m.token = cred.Token
	m.log.Debug().Str("user_id", user.ID).Msg("Restored session from stored credential")
}

// tokenExpired inspects the token's exp claim without verifying the
// signature (the secret lives on the server). Tokens that are not JWTs are
// treated as opaque and never expire locally.
func tokenExpired(token string) bool {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

// Login authenticates against the backend and persists the resulting
// credential. Fails with ErrSessionBusy if another login or register is in
// flight, and with a normalized AuthError on any backend failure.
func (m *Manager) Login(creds client.Credentials) (*client.User, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}

	result, err := m.api.Login(creds)
	if err != nil {
		m.fail("login", err)
		return nil, &AuthError{Op: "login", Message: "invalid email or password"}
	}

	return m.succeed(result), nil
}

// Register creates an account and persists the resulting credential. Same
// busy and error semantics as Login.
func (m *Manager) Register(reg client.Registration) (*client.User, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}

	result, err := m.api.Register(reg)
	if err != nil {
		m.fail("register", err)
		return nil, &AuthError{Op: "register", Message: "registration failed"}
	}

	return m.succeed(result), nil
}

// begin marks an auth operation as in flight, rejecting concurrent ones
func (m *Manager) begin() error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return ErrSessionBusy
	}
	m.loading = true
	m.mu.Unlock()
	m.notify()
	return nil
}

// fail logs the underlying error and returns the session to its resting
// state without a user.
func (m *Manager) fail(op string, err error) {
	m.log.Warn().Err(err).Str("op", op).Msg("Authentication failed")
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

// succeed persists the credential and installs the authenticated user
func (m *Manager) succeed(result *client.AuthResult) *client.User {
	if err := m.store.Save(credstore.Credential{Token: result.Token, User: result.User}); err != nil {
		// The in-memory session is still valid for this process; only the
		// next restore is affected.
		m.log.Warn().Err(err).Msg("Failed to persist credential")
	}

	user := result.User
	m.mu.Lock()
	m.user = &user
	m.token = result.Token
	m.loading = false
	m.mu.Unlock()
	m.notify()

	returned := user
	return &returned
}

// Logout clears the persisted credential and drops the session. Safe to
// call repeatedly and when already logged out.
func (m *Manager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("Failed to clear stored credential")
	}

	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	m.notify()
}

// UpdateUser merges a partial update into the cached user record and
// refreshes the store's cached copy. It performs no network call, never
// flips the loading flag and never rewrites the token; profile flows call
// it after persisting their changes through the REST layer.
func (m *Manager) UpdateUser(patch UserPatch) (*client.User, error) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("no user is logged in")
	}

	if patch.Name != nil {
		m.user.Name = *patch.Name
	}
	if patch.Email != nil {
		m.user.Email = *patch.Email
	}
	if patch.Bio != nil {
		m.user.Bio = *patch.Bio
	}
	if patch.Location != nil {
		m.user.Location = *patch.Location
	}
	if patch.AvatarURL != nil {
		m.user.AvatarURL = *patch.AvatarURL
	}
	updated := *m.user
	m.mu.Unlock()

	if err := m.store.SaveUser(updated); err != nil {
		m.log.Warn().Err(err).Msg("Failed to refresh cached user record")
	}
	m.notify()

	returned := updated
	return &returned, nil
}

// SetUser replaces the cached user record wholesale, e.g. with the record
// the backend returned from a profile update.
func (m *Manager) SetUser(user client.User) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return
	}
	m.user = &user
	m.mu.Unlock()

	if err := m.store.SaveUser(user); err != nil {
		m.log.Warn().Err(err).Msg("Failed to refresh cached user record")
	}
	m.notify()
}

// Current returns a snapshot of the session state
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Token returns the bearer token of the current session, or "" when
// logged out. Handed to the REST layer for authenticated operations.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Subscribe registers a callback invoked with a state snapshot after
// every transition. The returned function cancels the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	fn(m.Current())

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// snapshot builds a State copy. Caller must hold the lock.
func (m *Manager) snapshot() State {
	st := State{Loading: m.loading}
	if m.user != nil {
		user := *m.user
		st.User = &user
	}
	return st
}

// notify delivers the current state to all subscribers outside the lock
func (m *Manager) notify() {
	m.mu.Lock()
	st := m.snapshot()
	fns := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
