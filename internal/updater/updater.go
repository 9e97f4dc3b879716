// Package updater replaces the running vsum binary with the latest GitHub release.
package updater

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/guiyumin/vsum/internal/core/version"
)

const (
	repoOwner = "guiyumin"
	repoName  = "vsum"
)

func newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, err
	}

	return selfupdate.NewUpdater(selfupdate.Config{
		Source: source,
	})
}

// currentVersion strips a leading "v" so it compares as semver.
func currentVersion() string {
	return strings.TrimPrefix(version.Version, "v")
}

// CheckUpdate checks if a new version is available
func CheckUpdate(ctx context.Context) (*selfupdate.Release, bool, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, false, err
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	if isDevBuild() || latest.LessOrEqual(currentVersion()) {
		return latest, false, nil
	}
	return latest, true, nil
}

// Update performs the self-update, reporting progress to w.
func Update(ctx context.Context, w io.Writer) error {
	if isDevBuild() {
		return fmt.Errorf("development builds cannot self-update; install a release from github.com/%s/%s", repoOwner, repoName)
	}

	updater, err := newUpdater()
	if err != nil {
		return err
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no releases found for %s/%s", repoOwner, repoName)
	}

	current := currentVersion()
	if latest.LessOrEqual(current) {
		fmt.Fprintf(w, "Already up to date (v%s)\n", current)
		return nil
	}

	fmt.Fprintf(w, "Updating from v%s to %s...\n", current, latest.Version())

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}

	fmt.Fprintf(w, "Successfully updated to %s\n", latest.Version())
	return nil
}

func isDevBuild() bool {
	return version.Version == "" || version.Version == "dev"
}
