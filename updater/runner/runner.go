package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/byte4ever/webapp_updater/updater/git"
	"github.com/byte4ever/webapp_updater/updater/naming"
	"github.com/byte4ever/webapp_updater/updater/params"
	"github.com/byte4ever/webapp_updater/updater/prhost"
	"github.com/byte4ever/webapp_updater/updater/registry"
)

// imageParam is the parameter rewritten in the prototype
// file.
const imageParam = "image"

// Outcome reports how a run ended. Skipped outcomes are
// successful early terminations, not errors.
type Outcome int

const (
	// OutcomeUpdated means the file was patched and a
	// pull request created.
	OutcomeUpdated Outcome = iota

	// OutcomeImageCurrent means the parameter file
	// already pointed at the resolved image; nothing was
	// written or published.
	OutcomeImageCurrent

	// OutcomePROpen means a pull request proposing this
	// commit is already open; commit, push, and PR
	// creation were skipped.
	OutcomePROpen
)

// String returns a log-friendly outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeImageCurrent:
		return "image-current"
	case OutcomePROpen:
		return "pr-open"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Checker reports whether an image reference already
// exists in the registry. Absence is registry.ErrNotFound;
// every other error is fatal.
type Checker interface {
	Exists(
		ctx context.Context,
		ref string,
	) (string, error)
}

// Builder produces a container image for a source commit
// and returns its reference.
type Builder interface {
	Build(
		ctx context.Context,
		commit string,
	) (string, error)
}

// VersionControl is the slice of git operations the
// pipeline needs.
type VersionControl interface {
	LastCommit(path string) (string, error)
	FindRemoteByURL(url string) (string, bool, error)
	AddRemote(name, url string) error
	SwitchToBranch(branch string) error
	CommitFile(path, message string) error
	ForcePush(remote, branch string) error
}

// Config holds all settings and collaborators for one
// update run.
type Config struct {
	// App is the web application component name.
	App string

	// RegistryRoot hosts the built images
	// (e.g. "gcr.io").
	RegistryRoot string

	// RegistryProject is the project hosting the image
	// inside RegistryRoot.
	RegistryProject string

	// ComponentPath is the source path (relative to the
	// repository root) whose last commit tags the image.
	ComponentPath string

	// ParamFile is the prototype file holding the image
	// parameter.
	ParamFile string

	// RemoteFork is the SSH URL of the fork the update
	// branch is pushed to.
	RemoteFork string

	// PRBase is the pull request base in
	// <owner>:<branch> form.
	PRBase string

	// Registry checks for existing images.
	Registry Checker

	// Builder builds fresh images.
	Builder Builder

	// VCS operates on the working repository.
	VCS VersionControl

	// Host lists and creates pull requests.
	Host prhost.Host
}

// Run executes one update pass and reports how it ended.
// Skipped outcomes return a nil error; every collaborator
// failure is fatal for the run, with no retry and no
// rollback of steps already taken.
func Run(ctx context.Context, cfg Config) (Outcome, error) {
	const errCtx = "running webapp image update"

	// Validate the fork URL before touching anything.
	owner, err := git.OwnerFromSSHURL(cfg.RemoteFork)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	// Compute the source revision once; the registry
	// tag, branch name, and PR title all derive from
	// this single snapshot.
	commit, err := cfg.VCS.LastCommit(cfg.ComponentPath)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"last change to component",
		"path", cfg.ComponentPath,
		"commit", commit,
	)

	// Ensure the fork remote exists, matching by exact
	// URL across all configured remotes.
	remote, found, err := cfg.VCS.FindRemoteByURL(
		cfg.RemoteFork,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	if !found {
		remote = owner

		slog.Info(
			"adding remote",
			"name", remote,
			"url", cfg.RemoteFork,
		)

		if err := cfg.VCS.AddRemote(
			remote, cfg.RemoteFork,
		); err != nil {
			return 0, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}
	}

	image, err := resolveImage(ctx, cfg, commit)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	old, changed, err := params.UpdateFile(
		cfg.ParamFile,
		map[string]string{imageParam: image},
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	if !changed {
		slog.Info(
			"image is already current",
			"image", old[imageParam],
		)

		return OutcomeImageCurrent, nil
	}

	namer := naming.Namer{App: cfg.App}

	branch := namer.BranchName(commit)

	if err := cfg.VCS.SwitchToBranch(branch); err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	// Force-pushing the branch would retrigger checks on
	// an open PR, so stop before commit and push when one
	// already proposes this commit.
	title := namer.PRTitle(commit)

	prs, err := cfg.Host.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	if prhost.HasTitle(prs, title) {
		slog.Info(
			"pull request already open",
			"title", title,
		)

		return OutcomePROpen, nil
	}

	if err := cfg.VCS.CommitFile(
		cfg.ParamFile, namer.CommitMessage(image),
	); err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := cfg.VCS.ForcePush(
		remote, branch,
	); err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := cfg.Host.Create(ctx, prhost.CreateRequest{
		Base:  cfg.PRBase,
		Head:  owner + ":" + branch,
		Title: title,
		Body:  title,
	}); err != nil {
		return 0, fmt.Errorf("%s: %w", errCtx, err)
	}

	return OutcomeUpdated, nil
}

// resolveImage returns the existing registry image tagged
// with commit, or builds a fresh one when the registry
// reports absence. Any other registry error propagates
// untouched so infrastructure failures are never mistaken
// for a missing image.
func resolveImage(
	ctx context.Context,
	cfg Config,
	commit string,
) (string, error) {
	const errCtx = "resolving image"

	ref := registry.Reference(
		cfg.RegistryRoot,
		cfg.RegistryProject,
		cfg.App,
		commit,
	)

	digest, err := cfg.Registry.Exists(ctx, ref)
	if err == nil {
		slog.Info(
			"image exists",
			"image", ref,
			"digest", digest,
		)

		return ref, nil
	}

	if !errors.Is(err, registry.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info("image absent, building", "image", ref)

	image, err := cfg.Builder.Build(ctx, commit)
	if err != nil {
		return "", fmt.Errorf(
			"%s: build: %w", errCtx, err,
		)
	}

	slog.Info("created image", "image", image)

	return image, nil
}
