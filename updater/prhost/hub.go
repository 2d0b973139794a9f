package prhost

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/byte4ever/webapp_updater/updater/exec"
)

// HubHost drives the hub CLI inside the working
// repository. hub infers the GitHub repository from the
// configured remotes and reads its token from the
// GITHUB_TOKEN environment variable.
type HubHost struct {
	// Dir is the repository root the hub commands run in.
	Dir string

	// Bin is the hub binary name or path.
	Bin string
}

// NewHubHost returns a HubHost for the repository at dir.
func NewHubHost(dir string) *HubHost {
	return &HubHost{
		Dir: dir,
		Bin: "hub",
	}
}

// ListOpen returns the open pull requests reported by
// "hub pr list" as identifier;title records.
func (h *HubHost) ListOpen(
	_ context.Context,
) ([]PullRequest, error) {
	const errCtx = "listing open pull requests"

	out, err := exec.ExOut(
		h.Dir, h.Bin,
		"pr", "list", "--format=%U;%t\n",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	prs, err := parseRecords(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return prs, nil
}

// Create opens a pull request via "hub pull-request". The
// message is written to a temp file and passed with -F:
// the first line becomes the title, the remainder the
// body.
func (h *HubHost) Create(
	_ context.Context,
	req CreateRequest,
) error {
	const errCtx = "creating pull request"

	msg := req.Title
	if req.Body != "" && req.Body != req.Title {
		msg += "\n\n" + req.Body
	}

	mf, err := os.CreateTemp("", "pr-message-")
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer os.Remove(mf.Name()) //nolint:errcheck

	if _, err := mf.WriteString(msg); err != nil {
		mf.Close() //nolint:errcheck,gosec

		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := mf.Close(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := exec.Ex(
		h.Dir, h.Bin,
		"pull-request", "-f",
		"--base="+req.Base,
		"-F", mf.Name(),
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// parseRecords parses newline-delimited identifier;title
// records. Blank lines are skipped; a line without the
// separator is malformed.
func parseRecords(out string) ([]PullRequest, error) {
	const errCtx = "parsing pull request records"

	var prs []PullRequest

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}

		id, title, ok := strings.Cut(line, ";")
		if !ok {
			return nil, fmt.Errorf(
				"%s: malformed record %q",
				errCtx, line,
			)
		}

		prs = append(prs, PullRequest{
			ID:    id,
			Title: title,
		})
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return prs, nil
}
