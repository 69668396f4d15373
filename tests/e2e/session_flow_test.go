package e2e

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/savora-app/savora/internal/cli/client"
	"github.com/savora-app/savora/internal/cli/credstore"
	"github.com/savora-app/savora/internal/cli/guard"
	"github.com/savora-app/savora/internal/cli/session"
	"github.com/savora-app/savora/internal/config"
	"github.com/savora-app/savora/internal/server"
)

// startServer boots the real API server backed by a throwaway SQLite
// database and serves it over httptest.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Addr:      ":0",
			PublicURL: "http://localhost:3000",
		},
		Database: config.DatabaseConfig{
			URL: filepath.Join(dir, "e2e.sqlite"),
		},
		Auth: config.AuthConfig{
			JWTSecret: "e2e-secret",
		},
		Uploads: config.UploadsConfig{
			Dir: filepath.Join(dir, "uploads"),
		},
	}

	srv, err := server.New(cfg, zerolog.Nop(), "e2e")
	require.NoError(t, err, "Failed to create server")

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

func TestSessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ts := startServer(t)
	log := zerolog.Nop()
	apiClient := client.New(ts.URL + "/api")
	credPath := filepath.Join(t.TempDir(), "credentials.json")

	// ===================================================================
	// Register, then work with the live session
	// ===================================================================
	store := credstore.NewFile(credPath, log)
	mgr := session.New(apiClient, store, log)

	t.Run("FreshStartIsLoggedOut", func(t *testing.T) {
		require.Nil(t, mgr.Current().User)
		require.ErrorIs(t, guard.RequireSession(mgr), guard.ErrNotAuthenticated)
	})

	t.Run("Register", func(t *testing.T) {
		user, err := mgr.Register(client.Registration{
			Name:     "Ana",
			Email:    "ana@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		require.Equal(t, "ana@example.com", user.Email)
		require.NotEmpty(t, mgr.Token())
		require.NoError(t, guard.RequireSession(mgr))
	})

	t.Run("PublishRecipe", func(t *testing.T) {
		created, err := apiClient.CreateRecipe(client.Recipe{
			Name:         "Tarte Tatin",
			Description:  "Upside-down caramel apple tart",
			Category:     "dessert",
			PrepTime:     30,
			CookTime:     45,
			Ingredients:  []string{"apples", "butter", "sugar"},
			Instructions: []string{"Caramelize", "Bake", "Flip"},
		}, mgr.Token())
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		stats, err := apiClient.GetStats(mgr.Token())
		require.NoError(t, err)
		require.Equal(t, 1, stats.RecipeCount)
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		bio := "home cook"
		updated, err := apiClient.UpdateProfile(client.ProfileUpdate{Bio: &bio}, mgr.Token())
		require.NoError(t, err)
		require.Equal(t, "home cook", updated.Bio)

		mgr.SetUser(*updated)
		require.Equal(t, "home cook", mgr.Current().User.Bio)
	})

	t.Run("UploadAvatar", func(t *testing.T) {
		pngHeader := "\x89PNG\r\n\x1a\n"
		url, err := apiClient.UploadAvatar(client.AvatarFile{
			Name:        "me.png",
			ContentType: "image/png",
			Size:        int64(len(pngHeader)),
			Content:     strings.NewReader(pngHeader),
		}, mgr.Token())
		require.NoError(t, err)
		require.Contains(t, url, "/uploads/")

		_, err = mgr.UpdateUser(session.UserPatch{AvatarURL: &url})
		require.NoError(t, err)
		require.Equal(t, url, mgr.Current().User.AvatarURL)
	})

	// ===================================================================
	// Simulate a process restart: a fresh manager over the same store
	// ===================================================================
	t.Run("RestoreAcrossRestart", func(t *testing.T) {
		restarted := session.New(client.New(ts.URL+"/api"), credstore.NewFile(credPath, log), log)

		st := restarted.Current()
		require.NotNil(t, st.User, "session should be restored from the stored credential")
		require.Equal(t, "ana@example.com", st.User.Email)
		require.Equal(t, "home cook", st.User.Bio, "profile changes must survive the restart")
		require.NoError(t, guard.RequireSession(restarted))

		// The restored token still works against the API
		stats, err := apiClient.GetStats(restarted.Token())
		require.NoError(t, err)
		require.Equal(t, 1, stats.RecipeCount)
	})

	// ===================================================================
	// Logout, then another restart starts logged out
	// ===================================================================
	t.Run("LogoutClearsCredential", func(t *testing.T) {
		mgr.Logout()
		require.Nil(t, mgr.Current().User)

		restarted := session.New(client.New(ts.URL+"/api"), credstore.NewFile(credPath, log), log)
		require.Nil(t, restarted.Current().User, "no session should survive a logout")
		require.ErrorIs(t, guard.RequireSession(restarted), guard.ErrNotAuthenticated)
	})

	t.Run("LoginAgain", func(t *testing.T) {
		user, err := mgr.Login(client.Credentials{
			Email:    "ana@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		require.Equal(t, "home cook", user.Bio)
	})

	t.Run("BadPasswordIsNormalized", func(t *testing.T) {
		fresh := session.New(client.New(ts.URL+"/api"), credstore.NewFile(filepath.Join(t.TempDir(), "c.json"), log), log)

		_, err := fresh.Login(client.Credentials{
			Email:    "ana@example.com",
			Password: "wrong-password",
		})
		require.Error(t, err)
		var authErr *session.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Nil(t, fresh.Current().User)
	})
}

func TestCorruptedCredentialRecovery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ts := startServer(t)
	log := zerolog.Nop()
	credPath := filepath.Join(t.TempDir(), "credentials.json")

	// Garbage on disk where the credential file should be
	require.NoError(t, writeFile(credPath, "{definitely not json"))

	mgr := session.New(client.New(ts.URL+"/api"), credstore.NewFile(credPath, log), log)

	// The app starts logged out instead of failing
	require.Nil(t, mgr.Current().User)

	// And a normal login works afterwards
	_, err := mgr.Register(client.Registration{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, mgr.Current().User)
}
