package update

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-version"

	"github.com/sqlforge/sqlforge/cli/internal/ui"
)

// latestKnown is the newest release this build knows about. A release
// pipeline stamps it via -ldflags; comparing against it keeps the check
// offline.
var latestKnown = "0.1.0"

// CheckForUpdates compares the running version against the newest known
// release and prints a notice when an upgrade is available.
func CheckForUpdates(currentVersion string) error {
	current, err := version.NewVersion(currentVersion)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}
	latest, err := version.NewVersion(latestKnown)
	if err != nil {
		return fmt.Errorf("invalid latest version format: %w", err)
	}

	if current.LessThan(latest) {
		ui.PrintWarning("A new version is available!")
		fmt.Printf("Current version: %s\n", currentVersion)
		fmt.Printf("Latest version:  %s\n", latestKnown)
		fmt.Printf("\nUpdate with: go install github.com/sqlforge/sqlforge/cli@latest\n")
	}
	return nil
}

// DownloadURL returns the release download URL for the current platform.
func DownloadURL(v string) string {
	return fmt.Sprintf("https://github.com/sqlforge/sqlforge/releases/download/v%s/sqlforge-%s-%s",
		v, runtime.GOOS, runtime.GOARCH)
}
