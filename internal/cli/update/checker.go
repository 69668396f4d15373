// Package update notifies the user when a newer CLI release exists. The
// check is best effort: failures are swallowed so an offline machine never
// sees an error from it.
package update

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	GitHubAPIURL = "https://api.github.com/repos/savora-app/savora/releases/latest"
	UserAgent    = "savora-cli"
)

// Release represents a GitHub release
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// GetLatestVersion fetches the latest version from GitHub
func GetLatestVersion() (string, error) {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	req, err := http.NewRequest("GET", GitHubAPIURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return release.TagName, nil
}

// CheckForUpdate checks if a new version is available
func CheckForUpdate(currentVersion string) (bool, string, error) {
	latestVersion, err := GetLatestVersion()
	if err != nil {
		return false, "", err
	}

	return newerThan(currentVersion, latestVersion), latestVersion, nil
}

// newerThan returns true if latest is newer than current
func newerThan(current, latest string) bool {
	current = strings.TrimPrefix(current, "v")
	latest = strings.TrimPrefix(latest, "v")

	// Development builds always get a nudge
	if current == "dev" {
		return true
	}

	return current != latest
}

// PrintUpdateNotification prints a message if an update is available
func PrintUpdateNotification(currentVersion string) {
	updateAvailable, latestVersion, err := CheckForUpdate(currentVersion)
	if err != nil {
		// Silently ignore errors - update check is optional
		return
	}

	if updateAvailable {
		fmt.Fprintf(os.Stderr, "New version available: %s -> %s\n\n", currentVersion, latestVersion)
	}
}
