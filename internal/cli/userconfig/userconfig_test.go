package userconfig

import (
	"path/filepath"
	"testing"
)

func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvAPIURL, "")
	return home
}

func TestGetConfigPath(t *testing.T) {
	home := setupTestHome(t)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}

	expected := filepath.Join(home, ".config", "savora", "config.json")
	if path != expected {
		t.Errorf("expected %q, got %q", expected, path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	setupTestHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIURL != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSetAPIURL_RoundTrip(t *testing.T) {
	setupTestHome(t)

	if err := SetAPIURL("https://api.savora.example/api"); err != nil {
		t.Fatalf("SetAPIURL failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIURL != "https://api.savora.example/api" {
		t.Errorf("expected saved URL, got %q", cfg.APIURL)
	}
}

func TestResolveAPIURL(t *testing.T) {
	t.Run("default when nothing is set", func(t *testing.T) {
		setupTestHome(t)

		url, err := ResolveAPIURL()
		if err != nil {
			t.Fatalf("ResolveAPIURL failed: %v", err)
		}
		if url != DefaultAPIURL {
			t.Errorf("expected default URL, got %q", url)
		}
	})

	t.Run("config file wins over default", func(t *testing.T) {
		setupTestHome(t)
		if err := SetAPIURL("https://configured.example/api"); err != nil {
			t.Fatalf("SetAPIURL failed: %v", err)
		}

		url, err := ResolveAPIURL()
		if err != nil {
			t.Fatalf("ResolveAPIURL failed: %v", err)
		}
		if url != "https://configured.example/api" {
			t.Errorf("expected configured URL, got %q", url)
		}
	})

	t.Run("environment wins over config file", func(t *testing.T) {
		setupTestHome(t)
		if err := SetAPIURL("https://configured.example/api"); err != nil {
			t.Fatalf("SetAPIURL failed: %v", err)
		}
		t.Setenv(EnvAPIURL, "https://env.example/api")

		url, err := ResolveAPIURL()
		if err != nil {
			t.Fatalf("ResolveAPIURL failed: %v", err)
		}
		if url != "https://env.example/api" {
			t.Errorf("expected env URL, got %q", url)
		}
	})
}
