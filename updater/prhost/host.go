package prhost

import (
	"context"
	"strings"
)

// Pattern: Strategy -- swap PR platform without changing
// pipeline logic.

// PullRequest is one open pull request on the host: an
// identifier (URL or number) and its title. Duplicate
// detection tests titles for exact membership.
type PullRequest struct {
	ID    string
	Title string
}

// CreateRequest carries everything needed to open a pull
// request.
type CreateRequest struct {
	// Base is the target in <owner>:<branch> form.
	Base string

	// Head is the proposing side in <owner>:<branch>
	// form. Hosts that infer the head from the checked
	// out branch ignore it.
	Head string

	// Title is the deterministic pull request title.
	Title string

	// Body is the pull request message body.
	Body string
}

// Host lists and creates pull requests on a hosting
// platform.
type Host interface {
	ListOpen(ctx context.Context) ([]PullRequest, error)
	Create(ctx context.Context, req CreateRequest) error
}

// HasTitle reports whether prs contains a pull request
// titled exactly title.
func HasTitle(prs []PullRequest, title string) bool {
	for _, pr := range prs {
		if pr.Title == title {
			return true
		}
	}

	return false
}

// branchOf strips the owner segment from an
// <owner>:<branch> reference. Plain branch names pass
// through.
func branchOf(ref string) string {
	if _, branch, ok := strings.Cut(ref, ":"); ok {
		return branch
	}

	return ref
}
