// Command update_webapp_image builds (or reuses) the web
// application's container image for the latest source
// revision, rewrites the prototype parameter file, and
// opens a pull request when the change is novel.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/byte4ever/webapp_updater/updater/builder"
	"github.com/byte4ever/webapp_updater/updater/git"
	"github.com/byte4ever/webapp_updater/updater/prhost"
	"github.com/byte4ever/webapp_updater/updater/registry"
	"github.com/byte4ever/webapp_updater/updater/runner"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // CLI flag setup is inherently long
func run() error {
	const errCtx = "running update_webapp_image"

	// Component flags.
	app := flag.String(
		"app", "jupyter-web-app",
		"Web application component name",
	)
	repoRoot := flag.String(
		"repo_root", ".",
		"Configuration repository root directory",
	)
	componentPath := flag.String(
		"component_path", "components/jupyter-web-app",
		"Source path whose last commit tags the image",
	)
	paramFile := flag.String(
		"param_file",
		"kubeflow/jupyter/prototypes/jupyter-web-app.jsonnet",
		"Prototype parameter file, relative to repo_root",
	)

	// Build flags.
	buildProject := flag.String(
		"build_project", "",
		"Project used to run the image build",
	)
	registryProject := flag.String(
		"registry_project", "",
		"Project hosting the built image",
	)
	registryRoot := flag.String(
		"registry", "gcr.io",
		"Registry root hosting the built images",
	)
	tmpDir := flag.String(
		"tmp_dir", os.TempDir(),
		"Temporary directory for build output documents",
	)

	// Publishing flags.
	remoteFork := flag.String(
		"remote_fork", "",
		"SSH URL of the fork the update branch is "+
			"pushed to (git@github.com:owner/repo.git)",
	)
	prBase := flag.String(
		"pr_base", "kubeflow:master",
		"Pull request base in <owner>:<branch> form",
	)
	addGithubHost := flag.Bool(
		"add_github_host", false,
		"Add the github ssh host to known ssh hosts "+
			"before pushing",
	)

	// PR host selection.
	prHost := flag.String(
		"pr_host", "hub",
		"Pull request host: hub, github, or gitlab",
	)

	// GitHub-specific flags.
	ghRepoOwner := flag.String(
		"github_repo_owner", "",
		"GitHub upstream repository owner",
	)
	ghRepo := flag.String(
		"github_repo", "",
		"GitHub upstream repository name",
	)
	ghToken := flag.String(
		"github_access_token", "",
		"GitHub personal access token",
	)
	ghEnterprise := flag.String(
		"github_enterprise_host", "",
		"GitHub Enterprise hostname",
	)

	// GitLab-specific flags.
	glHost := flag.String(
		"gitlab_host", "",
		"GitLab instance URL",
	)
	glRepo := flag.String(
		"gitlab_repo", "",
		"GitLab project path (org/project)",
	)
	glToken := flag.String(
		"gitlab_access_token", "",
		"GitLab personal access token",
	)

	flag.Parse()

	host, err := newHost(
		*prHost,
		*repoRoot,
		hostFlags{
			ghRepoOwner:  *ghRepoOwner,
			ghRepo:       *ghRepo,
			ghToken:      *ghToken,
			ghEnterprise: *ghEnterprise,
			glHost:       *glHost,
			glRepo:       *glRepo,
			glToken:      *glToken,
		},
	)
	if err != nil {
		return fmt.Errorf(
			"%s: create pr host: %w", errCtx, err,
		)
	}

	if *addGithubHost {
		if err := git.AddKnownHost(
			"github.com",
		); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	bld := builder.New(builder.Config{
		Dir: filepath.Join(
			*repoRoot, *componentPath,
		),
		BuildProject:    *buildProject,
		RegistryProject: *registryProject,
		TmpDir:          *tmpDir,
	})

	cfg := runner.Config{
		App:             *app,
		RegistryRoot:    *registryRoot,
		RegistryProject: *registryProject,
		ComponentPath:   *componentPath,
		ParamFile: filepath.Join(
			*repoRoot, *paramFile,
		),
		RemoteFork: *remoteFork,
		PRBase:     *prBase,
		Registry:   registry.RemoteChecker{},
		Builder:    bld,
		VCS:        git.Open(*repoRoot),
		Host:       host,
	}

	outcome, err := runner.Run(
		context.Background(), cfg,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info("run finished", "outcome", outcome.String())

	return nil
}

// hostFlags bundles host-specific flag values to keep
// newHost under the 4-argument limit.
type hostFlags struct {
	ghRepoOwner  string
	ghRepo       string
	ghToken      string
	ghEnterprise string
	glHost       string
	glRepo       string
	glToken      string
}

// newHost creates a prhost.Host based on the host name.
// Pattern: Factory -- selects platform implementation at
// runtime.
func newHost(
	server string,
	repoRoot string,
	hf hostFlags,
) (prhost.Host, error) {
	const errCtx = "creating pr host"

	switch server {
	case "hub":
		return prhost.NewHubHost(repoRoot), nil

	case "github":
		h, err := prhost.NewGitHubHost(
			prhost.GitHubConfig{
				RepoOwner:      hf.ghRepoOwner,
				Repo:           hf.ghRepo,
				AccessToken:    hf.ghToken,
				EnterpriseHost: hf.ghEnterprise,
			},
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return h, nil

	case "gitlab":
		h, err := prhost.NewGitLabHost(
			prhost.GitLabConfig{
				Host:        hf.glHost,
				Repo:        hf.glRepo,
				AccessToken: hf.glToken,
			},
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return h, nil

	default:
		return nil, fmt.Errorf(
			"%s: unknown host %q", errCtx, server,
		)
	}
}
