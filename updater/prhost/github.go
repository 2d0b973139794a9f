package prhost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v68/github"
)

// GitHubConfig holds the settings needed to create a
// GitHub pull request host.
type GitHubConfig struct {
	// RepoOwner is the GitHub user or organisation that
	// owns the upstream repository.
	RepoOwner string

	// Repo is the repository name (without owner).
	Repo string

	// AccessToken is a personal access token or GitHub
	// App token used for authentication.
	AccessToken string

	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
}

// GitHubHost lists and creates pull requests through the
// GitHub API.
type GitHubHost struct {
	client    *gh.Client
	repoOwner string
	repo      string
}

// NewGitHubHost validates cfg and returns a GitHubHost.
func NewGitHubHost(
	cfg GitHubConfig,
) (*GitHubHost, error) {
	const errCtx = "creating github host"

	if cfg.RepoOwner == "" {
		return nil, fmt.Errorf(
			"%s: repo owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	client := gh.NewClient(nil).
		WithAuthToken(cfg.AccessToken)

	if cfg.EnterpriseHost != "" {
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &GitHubHost{
		client:    client,
		repoOwner: cfg.RepoOwner,
		repo:      cfg.Repo,
	}, nil
}

// ListOpen returns every open pull request of the upstream
// repository, following pagination.
func (h *GitHubHost) ListOpen(
	ctx context.Context,
) ([]PullRequest, error) {
	const errCtx = "listing github pull requests"

	opts := &gh.PullRequestListOptions{
		State: "open",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var prs []PullRequest

	for {
		page, resp, err := h.client.PullRequests.List(
			ctx, h.repoOwner, h.repo, opts,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		for _, pr := range page {
			prs = append(prs, PullRequest{
				ID:    pr.GetHTMLURL(),
				Title: pr.GetTitle(),
			})
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return prs, nil
}

// Create opens a pull request from req.Head into the
// branch part of req.Base. If a PR already exists for this
// head/base pair (HTTP 422) the error is suppressed.
func (h *GitHubHost) Create(
	ctx context.Context,
	req CreateRequest,
) error {
	const errCtx = "creating github pull request"

	base := branchOf(req.Base)
	head := req.Head
	title := req.Title

	body := req.Body
	if body == "" {
		body = title
	}

	pr := &gh.NewPullRequest{
		Title: &title,
		Head:  &head,
		Base:  &base,
		Body:  &body,
	}

	created, resp, err := h.client.PullRequests.Create(
		ctx, h.repoOwner, h.repo, pr,
	)
	if err == nil {
		slog.Info(
			"created pull request",
			"url", created.GetURL(),
		)

		return nil
	}

	// HTTP 422: PR already exists for this head/base
	// pair.
	if resp != nil &&
		resp.StatusCode ==
			http.StatusUnprocessableEntity {
		slog.Info("reusing existing pull request")

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
				"github response",
				"body", string(rb),
			)
		}
	}

	return fmt.Errorf("%s: %w", errCtx, err)
}
