package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/webapp_updater/updater/exec"
)

// OwnerFromSSHURL extracts the owner segment from an
// SSH-style remote URL like git@github.com:owner/repo.git.
// Non-SSH URLs are a configuration error.
func OwnerFromSSHURL(url string) (string, error) {
	const errCtx = "parsing fork url"

	if !strings.HasPrefix(url, "git@") {
		return "", fmt.Errorf(
			"%s: %q: only ssh urls are supported",
			errCtx, url,
		)
	}

	_, after, ok := strings.Cut(url, ":")
	if !ok {
		return "", fmt.Errorf(
			"%s: %q: missing owner segment",
			errCtx, url,
		)
	}

	owner, _, _ := strings.Cut(after, "/")
	if owner == "" {
		return "", fmt.Errorf(
			"%s: %q: missing owner segment",
			errCtx, url,
		)
	}

	return owner, nil
}

// AddKnownHost appends host's public keys to the user's
// known_hosts file via ssh-keyscan, so a fresh CI machine
// can push over SSH without an interactive prompt.
func AddKnownHost(host string) error {
	const errCtx = "adding known host"

	out, err := exec.ExOut("", "ssh-keyscan", host)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	sshDir := filepath.Join(home, ".ssh")

	if err := os.MkdirAll(sshDir, 0o700); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	path := filepath.Join(sshDir, "known_hosts")

	//nolint:gosec // path is under the user's home
	f, err := os.OpenFile(
		path,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0o600,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := f.WriteString(out); err != nil {
		f.Close() //nolint:errcheck,gosec

		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
