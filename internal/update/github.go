package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v68/github"
)

// Info is the result of comparing the running version with the latest release.
type Info struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
}

// ReleaseChecker is a Source that checks the latest GitHub release. It reports
// checking, available, not-available and error events; downloading is left to
// the platform installer.
type ReleaseChecker struct {
	Hub

	client  *github.Client
	owner   string
	repo    string
	current string
}

// NewReleaseChecker creates a checker for github.com/owner/repo. A nil
// httpClient uses one with a 30s timeout.
func NewReleaseChecker(httpClient *http.Client, owner, repo, currentVersion string) *ReleaseChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ReleaseChecker{
		client:  github.NewClient(httpClient),
		owner:   owner,
		repo:    repo,
		current: currentVersion,
	}
}

// CheckForUpdate queries the latest release without emitting events. A
// repository with no releases reports no update.
func (c *ReleaseChecker) CheckForUpdate(ctx context.Context) (Info, error) {
	info := Info{CurrentVersion: c.current}
	if c.owner == "" || c.repo == "" {
		return info, fmt.Errorf("update repository not configured")
	}

	release, _, err := c.client.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return info, nil
		}
		return info, fmt.Errorf("failed to fetch latest release: %w", err)
	}

	info.LatestVersion = release.GetTagName()
	info.ReleaseURL = release.GetHTMLURL()
	info.Available = info.LatestVersion != "" && CompareVersions(c.current, info.LatestVersion) < 0
	return info, nil
}

// Check implements Source.
func (c *ReleaseChecker) Check(ctx context.Context) {
	c.Emit(Event{Kind: KindChecking})

	info, err := c.CheckForUpdate(ctx)
	switch {
	case err != nil:
		c.Emit(Event{Kind: KindError, Err: err})
	case info.Available:
		c.Emit(Event{Kind: KindAvailable, Version: info.LatestVersion})
	default:
		c.Emit(Event{Kind: KindNotAvailable, Version: info.CurrentVersion})
	}
}
