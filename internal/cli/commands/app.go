package commands

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/savora-app/savora/internal/cli/client"
	"github.com/savora-app/savora/internal/cli/credstore"
	"github.com/savora-app/savora/internal/cli/session"
	"github.com/savora-app/savora/internal/cli/userconfig"
)

// EnvCredentialsFile forces the file-backed credential store, bypassing
// the OS keychain. Useful on headless machines and in CI.
const EnvCredentialsFile = "SAVORA_CREDENTIALS_FILE"

// App holds the dependencies shared by all commands: the API client, the
// session manager and the credential store behind it. Built once at
// startup and injected into every command constructor.
type App struct {
	Log     zerolog.Logger
	Client  *client.Client
	Session *session.Manager
	Store   credstore.Store
}

// NewApp wires the client, credential store and session manager together.
// Creating the session manager restores any persisted session.
func NewApp(log zerolog.Logger) (*App, error) {
	apiURL, err := userconfig.ResolveAPIURL()
	if err != nil {
		return nil, err
	}

	store, err := openStore(log)
	if err != nil {
		return nil, err
	}

	apiClient := client.New(apiURL)

	return &App{
		Log:     log,
		Client:  apiClient,
		Session: session.New(apiClient, store, log),
		Store:   store,
	}, nil
}

// openStore picks the credential store backend: a JSON file when
// SAVORA_CREDENTIALS_FILE is set, the OS keychain otherwise.
func openStore(log zerolog.Logger) (credstore.Store, error) {
	if path := os.Getenv(EnvCredentialsFile); path != "" {
		return credstore.NewFile(path, log), nil
	}
	return credstore.NewKeyring(log), nil
}
