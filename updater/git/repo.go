package git

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byte4ever/webapp_updater/updater/exec"
)

// Repo is an existing local working tree.
type Repo struct {
	// Dir is the repository root.
	Dir string
}

// Open returns a Repo rooted at dir.
func Open(dir string) *Repo {
	return &Repo{Dir: dir}
}

// LastCommit returns the short hash of the most recent
// commit that touched path (relative to the repository
// root). Errors when no commit touches the path.
func (r *Repo) LastCommit(path string) (string, error) {
	const errCtx = "querying last commit"

	out, err := exec.ExOut(
		r.Dir, "git",
		"log", "-n", "1", "--pretty=format:%h",
		"--", path,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	commit := strings.TrimSpace(out)
	if commit == "" {
		return "", fmt.Errorf(
			"%s: no commits touch %s", errCtx, path,
		)
	}

	return commit, nil
}

// FindRemoteByURL returns the name of the remote
// configured with exactly url, checking every remote's
// fetch and push URLs.
func (r *Repo) FindRemoteByURL(
	url string,
) (string, bool, error) {
	const errCtx = "enumerating remotes"

	out, err := exec.ExOut(r.Dir, "git", "remote", "-v")
	if err != nil {
		return "", false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		// Lines look like "name\turl (fetch)".
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}

		if fields[1] == url {
			return fields[0], true, nil
		}
	}

	if err := sc.Err(); err != nil {
		return "", false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return "", false, nil
}

// AddRemote configures a new remote.
func (r *Repo) AddRemote(name, url string) error {
	const errCtx = "adding remote"

	if _, err := exec.Ex(
		r.Dir, "git", "remote", "add", name, url,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch() (string, error) {
	const errCtx = "querying current branch"

	out, err := exec.ExOut(
		r.Dir, "git",
		"rev-parse", "--abbrev-ref", "HEAD",
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return strings.TrimSpace(out), nil
}

// HasBranch reports whether branch exists locally.
func (r *Repo) HasBranch(branch string) bool {
	_, err := exec.Ex(
		r.Dir, "git",
		"rev-parse", "--verify", "--quiet",
		"refs/heads/"+branch,
	)

	return err == nil
}

// SwitchToBranch switches to branch, reusing it when it
// exists locally and creating it otherwise. Already being
// on the branch is a no-op.
func (r *Repo) SwitchToBranch(branch string) error {
	const errCtx = "switching branch"

	cur, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if cur == branch {
		return nil
	}

	if r.HasBranch(branch) {
		slog.Info("branch exists", "branch", branch)

		if _, err := exec.Ex(
			r.Dir, "git", "checkout", branch,
		); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	slog.Info("creating branch", "branch", branch)

	if _, err := exec.Ex(
		r.Dir, "git", "checkout", "-b", branch,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// CommitFile stages the single file at path and commits it
// with message.
func (r *Repo) CommitFile(path, message string) error {
	const errCtx = "committing file"

	if _, err := exec.Ex(
		r.Dir, "git", "add", path,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := exec.Ex(
		r.Dir, "git", "commit", "-m", message,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// ForcePush pushes branch to remote with --force. The
// branch is recreated on every run targeting the same
// revision; callers must have verified no open PR proposes
// it before overwriting.
func (r *Repo) ForcePush(remote, branch string) error {
	const errCtx = "pushing branch"

	if _, err := exec.Ex(
		r.Dir, "git", "push", "-f", remote, branch,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
