package prhost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gl "gitlab.com/gitlab-org/api/client-go"
)

// GitLabConfig holds the settings needed to create a
// GitLab merge request host.
type GitLabConfig struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string

	// Repo is the full project path
	// (e.g. "org/project").
	Repo string

	// AccessToken is a personal or project access token
	// used for authentication.
	AccessToken string
}

// GitLabHost lists and creates merge requests through the
// GitLab API.
type GitLabHost struct {
	client *gl.Client
	repo   string
}

// NewGitLabHost validates cfg and returns a GitLabHost.
func NewGitLabHost(
	cfg GitLabConfig,
) (*GitLabHost, error) {
	const errCtx = "creating gitlab host"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &GitLabHost{
		client: client,
		repo:   cfg.Repo,
	}, nil
}

// ListOpen returns every open merge request of the
// project, following pagination.
func (h *GitLabHost) ListOpen(
	_ context.Context,
) ([]PullRequest, error) {
	const errCtx = "listing gitlab merge requests"

	opts := &gl.ListProjectMergeRequestsOptions{
		State: gl.Ptr("opened"),
		ListOptions: gl.ListOptions{
			PerPage: 100,
		},
	}

	var prs []PullRequest

	for {
		page, resp, err := h.client.MergeRequests.
			ListProjectMergeRequests(h.repo, opts)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		for _, mr := range page {
			prs = append(prs, PullRequest{
				ID:    mr.WebURL,
				Title: mr.Title,
			})
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return prs, nil
}

// Create opens a merge request from the branch part of
// req.Head into the branch part of req.Base. If a MR
// already exists for this source branch (HTTP 409) the
// error is suppressed.
func (h *GitLabHost) Create(
	_ context.Context,
	req CreateRequest,
) error {
	const errCtx = "creating gitlab merge request"

	opts := gl.CreateMergeRequestOptions{
		Title:        gl.Ptr(req.Title),
		SourceBranch: gl.Ptr(branchOf(req.Head)),
		TargetBranch: gl.Ptr(branchOf(req.Base)),
	}

	created, resp, err := h.client.MergeRequests.
		CreateMergeRequest(h.repo, &opts)
	if err == nil {
		slog.Info(
			"created merge request",
			"url", created.WebURL,
		)

		return nil
	}

	// HTTP 409: MR already exists for this source
	// branch.
	if resp != nil &&
		resp.StatusCode == http.StatusConflict {
		slog.Info("reusing existing merge request")

		return nil
	}

	// Log the response body for debugging.
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close() //nolint:errcheck

		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			slog.Warn(
				"cannot read response body",
				"error", readErr,
			)
		} else {
			slog.Warn(
				"gitlab response",
				"body", string(rb),
			)
		}
	}

	return fmt.Errorf("%s: %w", errCtx, err)
}
